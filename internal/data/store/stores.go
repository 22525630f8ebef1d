package store

import (
	"context"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/data/redisStore"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

// Open returns the redis backed stores, or in-memory ones when redis is
// offline and config.FALLBACK_REDIS_TO_INTERNALSTORE allows it.
func Open(ctx context.Context, settings config.Settings) (jobModel.JobStore, jobModel.RecordStore, error) {
	logger := logger_i.NewLogger("Stores")

	jobs, err := redisStore.Open(ctx, settings, config.RedisJobStore)
	if err == nil {
		var records *redisStore.Store
		records, err = redisStore.Open(ctx, settings, config.RedisRecordStore)
		if err == nil {
			return NewRedisJobStore(jobs), NewRedisRecordStore(records), nil
		}
	}
	if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
		return nil, nil, err
	}
	logger.Warn("Redis unavailable, falling back to in-memory stores", "error", err)
	return InitInMemoryJobStore(), InitInMemoryRecordStore(), nil
}
