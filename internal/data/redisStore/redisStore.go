package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Store is one logical redis database. The job store and the record store
// each get their own.
type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// Open connects to database dbType and pings it. The store closes itself
// once ctx is done.
func Open(ctx context.Context, settings config.Settings, dbType int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  settings.RedisAddr,
		Password:              settings.RedisPassword,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis db %d is offline: %w", dbType, err)
	}

	s := NewStore(client)
	s.Type = dbType
	s.logger.Info("Redis store init successfully", "db", dbType)
	go s.closeOnDone(ctx)
	return s, nil
}

// NewStore wraps an existing client, tests hand in a miniredis one.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store :"),
	}
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "db", s.Type, "error", err)
		return
	}
	s.logger.Info("Redis store closed successfully", "db", s.Type)
}
