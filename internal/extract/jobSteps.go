package extract

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

// ProcessJob runs one queued job. The job comes back with its status,
// step and error filled in; the record is nil unless the job completed.
func (s *service) ProcessJob(ctx context.Context, job jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract_job", time.Since(start)) }()

	job = logOutput(job, jobModel.LoadingSource, log)
	doc, err := s.loadDocument(ctx, job)
	if err != nil {
		return s.jobError(job, err, "LOAD_FAILURE", http.StatusUnprocessableEntity, false), nil
	}

	job = logOutput(job, jobModel.Extracting, log)
	record, err := s.ExtractDocument(ctx, doc)
	switch {
	case errors.Is(err, ErrEmptyDocument):
		return s.jobError(job, err, "EMPTY_DOCUMENT", http.StatusBadRequest, false), nil
	case errors.Is(err, ErrAllBackendsFailed):
		return s.jobError(job, err, "ALL_BACKENDS_FAILED", http.StatusBadGateway, true), nil
	case err != nil:
		return s.jobError(job, err, "EXTRACTION_FAILURE", http.StatusInternalServerError, true), nil
	}

	job.JobPayload.Confidence = record.Confidence
	job.JobPayload.TableCount = len(record.Tables)
	job = logOutput(job, jobModel.Complete, log)
	job.Status = jobModel.JobStatusComplete
	return job, &record
}

func (s *service) loadDocument(ctx context.Context, job jobModel.Job) (commonModels.Document, error) {
	p := job.JobPayload
	if job.JobType != jobModel.JobTypeFile {
		return commonModels.Document{
			Id:         p.DocumentId,
			Name:       p.DocumentName,
			Text:       p.Text,
			ReceivedAt: job.CreatedTime,
		}, nil
	}
	if s.load == nil {
		return commonModels.Document{}, errors.New("file jobs are not supported without a document loader")
	}
	// uploads are temporary, the text lives on in the record
	defer func() {
		if err := os.Remove(p.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("extract.upload.cleanup", "path", p.FilePath, "error", err)
		}
	}()
	return s.load(ctx, p.FilePath, p.DocumentId, p.DocumentName)
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessJob", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, code int, canRetry bool) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: err.Error(),
		Retry:   canRetry,
	}
	job.CurrentStep = jobModel.Error
	job.Status = jobModel.JobStatusError
	return job
}
