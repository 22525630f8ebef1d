package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/akolanti/TenderExtract/internal/job"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service   *job.Service
	extractor extract.Service
}

func InitJobHandler(jobService *job.Service, extractService extract.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, extractor: extractService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "jobId", newJob.id)
	log.Info("To create new job", "type", newJob.jobType)
	handlerInstance.pushToJobChannel(newJob, log)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func GetJobRecord(id string, traceId string) (extractionModel.MergedRecord, bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil && handlerInstance.service.RecordStore != nil {
		return handlerInstance.service.RecordStore.GetRecord(ctxC, id)
	}
	return extractionModel.MergedRecord{}, false
}

func DetectTables(text string) (detector.Detection, bool) {
	if handlerInstance == nil || handlerInstance.extractor == nil {
		return detector.Detection{}, false
	}
	return handlerInstance.extractor.DetectTables(text), true
}

func ValidateExtractRequest(text string) bool {
	if handlerInstance == nil {
		return false
	}
	return len(text) > 0
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData, log *logger_i.Logger) {

	_job := jobModel.Job{
		Id:          newJob.id,
		TraceId:     newJob.traceId,
		JobType:     newJob.jobType,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.ExtractInit,
		JobPayload: jobModel.JobPayload{
			DocumentId:   newJob.documentId,
			DocumentName: newJob.documentName,
			Text:         newJob.text,
			FilePath:     newJob.filePath,
		},
	}

	// saved before queueing so /status finds the job immediately
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := h.service.JobStore.SaveJob(ctxC, _job); err != nil {
		log.Warn("Could not save queued job", "err", err)
	}

	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send keeps the queue bounded
	log.Info("Created new job")

	// a new worker every RequestsPerNewWorkerCount requests, and one per
	// uploaded file since those carry the parsing cost as well
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeFile {
		metrics.StartDispatcherSignalCount()
		log.Debug("Signalling dispatcher", "requestCount", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
