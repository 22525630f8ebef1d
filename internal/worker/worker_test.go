package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/akolanti/TenderExtract/internal/job"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockExtractService counts processed jobs and lets a test shape the outcome.
type MockExtractService struct {
	ProcessedCount int32
	OnProcessJob   func(ctx context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord)
}

func (m *MockExtractService) ExtractDocument(ctx context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error) {
	return extractionModel.NewMergedRecord(doc.Id), nil
}

func (m *MockExtractService) DetectTables(string) detector.Detection {
	return detector.Detection{}
}

func (m *MockExtractService) ProcessJob(ctx context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcessJob != nil {
		return m.OnProcessJob(ctx, j)
	}
	j.Status = jobModel.JobStatusComplete
	return j, nil
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

type MockRecordStore struct {
	OnSaveRecord func(ctx context.Context, jobId string, record extractionModel.MergedRecord) error
}

func (m *MockRecordStore) SaveRecord(ctx context.Context, jobId string, record extractionModel.MergedRecord) error {
	if m.OnSaveRecord != nil {
		return m.OnSaveRecord(ctx, jobId, record)
	}
	return nil
}

func (m *MockRecordStore) GetRecord(ctx context.Context, jobId string) (extractionModel.MergedRecord, bool) {
	return extractionModel.MergedRecord{}, false
}

func (m *MockRecordStore) DeleteRecord(ctx context.Context, jobId string) {}

// lastSaved records the final state the worker writes for each job.
type lastSaved struct {
	mu   sync.Mutex
	jobs map[string]jobModel.Job
}

func (l *lastSaved) save(_ context.Context, j jobModel.Job) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[j.Id] = j
	return nil
}

func (l *lastSaved) get(id string) jobModel.Job {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.jobs[id]
}

func TestWorkerPool_Flow(t *testing.T) {
	saved := &lastSaved{jobs: map[string]jobModel.Job{}}
	var storedRecord atomic.Value
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{OnSaveJob: saved.save},
		RecordStore: &MockRecordStore{OnSaveRecord: func(_ context.Context, id string, r extractionModel.MergedRecord) error {
			storedRecord.Store(id + "/" + r.DocumentID)
			return nil
		}},
	}
	mockExtract := &MockExtractService{OnProcessJob: func(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
		j.Status = jobModel.JobStatusComplete
		j.CurrentStep = jobModel.Complete
		r := extractionModel.NewMergedRecord(j.JobPayload.DocumentId)
		return j, &r
	}}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	atomic.StoreInt64(&currentWorkerCount, 0)
	InitServices(jobSvc, mockExtract)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		assert.Eventually(t, func() bool {
			return atomic.LoadInt64(&currentWorkerCount) >= 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Worker processes a job and stores the record", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobPayload: jobModel.JobPayload{DocumentId: "doc-1"}}

		require.Eventually(t, func() bool {
			return saved.get("test-1").Status == jobModel.JobStatusComplete
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&mockExtract.ProcessedCount))
		assert.Equal(t, "test-1/doc-1", storedRecord.Load())
		assert.False(t, saved.get("test-1").EndTime.IsZero())
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_RecordStoreFailure(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")
	saved := &lastSaved{jobs: map[string]jobModel.Job{}}
	InitServices(&job.Service{
		JobStore: &MockJobStore{OnSaveJob: saved.save},
		RecordStore: &MockRecordStore{OnSaveRecord: func(context.Context, string, extractionModel.MergedRecord) error {
			return errors.New("redis down")
		}},
	}, &MockExtractService{OnProcessJob: func(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
		j.Status = jobModel.JobStatusComplete
		r := extractionModel.NewMergedRecord("doc")
		return j, &r
	}})

	executeJob(jobModel.Job{Id: "job-2"})

	final := saved.get("job-2")
	assert.Equal(t, jobModel.JobStatusError, final.Status)
	assert.Equal(t, jobModel.Error, final.CurrentStep)
	assert.Equal(t, 500, final.Error.Code)
	assert.True(t, final.Error.Retry)
}

func TestExecuteJob_FailedJobKeepsError(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")
	saved := &lastSaved{jobs: map[string]jobModel.Job{}}
	InitServices(&job.Service{
		JobStore:    &MockJobStore{OnSaveJob: saved.save},
		RecordStore: &MockRecordStore{},
	}, &MockExtractService{OnProcessJob: func(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: 502, Message: "all backends failed", Retry: true}
		return j, nil
	}})

	executeJob(jobModel.Job{Id: "job-3"})

	final := saved.get("job-3")
	assert.Equal(t, jobModel.JobStatusError, final.Status)
	assert.Equal(t, 502, final.Error.Code)
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	idleWorkerTimeout = 50 * time.Millisecond
	t.Cleanup(func() { idleWorkerTimeout = time.Minute; atomic.StoreInt64(&minWorkerCount, 1) })

	logger = logger_i.NewLogger("TestWorkerPool")
	InitServices(&job.Service{JobChannel: make(chan jobModel.Job)}, &MockExtractService{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	createWorker()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&currentWorkerCount) == 0
	}, time.Second, 10*time.Millisecond, "idle worker should retire")
}
