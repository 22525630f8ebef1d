package store

import (
	"context"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/data/redisStore"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	n, err := s.store.PutJSON(ctx, job.Id, job, config.RedisJobStoreTTL)
	if err != nil {
		return err
	}
	log.Debug("Saved job to Redis", "status", job.Status, "step", job.CurrentStep, "bytes", n)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	found, err := s.store.GetJSON(ctx, jobId, &job)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error reading job from Redis", "jobId", jobId, "error", err)
		return jobModel.Job{}, false
	}
	return job, found
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobID); err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}
