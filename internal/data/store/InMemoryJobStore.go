package store

import (
	"context"
	"sync"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

// InMemoryJobStore is the fallback when redis is unreachable. Nothing
// expires, so it suits a single process with a bounded lifetime.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.Job
	logger   *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.Job),
		logger:   logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[jobToStore.Id] = jobToStore
	store.logger.Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]extractionModel.MergedRecord
}

func InitInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[string]extractionModel.MergedRecord)}
}

func (store *InMemoryRecordStore) SaveRecord(ctx context.Context, jobId string, record extractionModel.MergedRecord) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.records[jobId] = record
	return nil
}

func (store *InMemoryRecordStore) GetRecord(ctx context.Context, jobId string) (extractionModel.MergedRecord, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	r, ok := store.records[jobId]
	return r, ok
}

func (store *InMemoryRecordStore) DeleteRecord(ctx context.Context, jobId string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.records, jobId)
}
