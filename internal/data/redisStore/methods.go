package redisStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PutJSON stores v under key as JSON and reports the encoded size.
func (s *Store) PutJSON(ctx context.Context, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return 0, err
	}
	return len(data), nil
}

// GetJSON decodes the value at key into dst. A missing key is not an
// error: found is false and err nil.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (found bool, err error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}
