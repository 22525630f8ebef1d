package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	jobmodel "github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout)
	defer cancel()
	log := logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobmodel.JobStatusRunning
	job.CurrentStep = jobmodel.ExtractInit
	saveJobState(ctx, job)

	job, record := _extractService.ProcessJob(ctx, job)
	if record != nil {
		job.CurrentStep = jobmodel.RedisCall
		if err := _jobService.RecordStore.SaveRecord(ctx, job.Id, *record); err != nil {
			log.Error("Failed to save merged record", "err", err)
			job.Status = jobmodel.JobStatusError
			job.CurrentStep = jobmodel.Error
			job.Error = jobmodel.JobError{Code: 500, Message: "could not store the extraction result", Retry: true}
		} else {
			job.CurrentStep = jobmodel.Complete
		}
	}

	job.EndTime = time.Now()
	// the job context may be spent by now, the final state must still land
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer saveCancel()
	saveJobState(saveCtx, job)
	log.Info("Job finished", "status", job.Status, "duration", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	count := atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}
