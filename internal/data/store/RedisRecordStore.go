package store

import (
	"context"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/data/redisStore"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

// RedisRecordStore keeps merged records longer than jobs so exports keep
// working after the job entry expired.
type RedisRecordStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisRecordStore(store *redisStore.Store) *RedisRecordStore {
	return &RedisRecordStore{
		store:  store,
		logger: logger_i.NewLogger("RecordStore"),
	}
}

func recordKey(jobId string) string {
	return "record:" + jobId
}

func (s *RedisRecordStore) SaveRecord(ctx context.Context, jobId string, record extractionModel.MergedRecord) error {
	n, err := s.store.PutJSON(ctx, recordKey(jobId), record, config.RedisRecordStoreTTL)
	if err != nil {
		return err
	}
	s.logger.WithTrace(ctx).Debug("Saved record to Redis", "jobId", jobId, "bytes", n)
	return nil
}

func (s *RedisRecordStore) GetRecord(ctx context.Context, jobId string) (extractionModel.MergedRecord, bool) {
	var record extractionModel.MergedRecord
	found, err := s.store.GetJSON(ctx, recordKey(jobId), &record)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error reading record from Redis", "jobId", jobId, "error", err)
		return extractionModel.MergedRecord{}, false
	}
	return record, found
}

func (s *RedisRecordStore) DeleteRecord(ctx context.Context, jobId string) {
	if err := s.store.Del(ctx, recordKey(jobId)); err != nil {
		s.logger.Error("Error deleting record from Redis", "jobId", jobId, "error", err)
	}
}
