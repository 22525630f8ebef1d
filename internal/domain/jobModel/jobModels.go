package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	ExtractInit    InternalStatus = "Init"
	LoadingSource  InternalStatus = "LoadingSource"
	Chunking       InternalStatus = "Chunking"
	DetectingTable InternalStatus = "DetectingTables"
	Extracting     InternalStatus = "Extracting"
	Merging        InternalStatus = "Merging"
	Deduplicating  InternalStatus = "Deduplicating"
	Categorizing   InternalStatus = "Categorizing"
	Validating     InternalStatus = "Validating"
	RedisCall      InternalStatus = "Redis"
	Error          InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeText JobType = "Text"
	JobTypeFile JobType = "File"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries either inline text or an uploaded file path.
type JobPayload struct {
	DocumentId   string `json:"document_id"`
	DocumentName string `json:"document_name,omitempty"`
	Text         string `json:"text,omitempty"`
	FilePath     string `json:"file_path,omitempty"`

	//filled after completion
	Confidence float64 `json:"confidence,omitempty"`
	TableCount int     `json:"table_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// RecordStore keeps the merged record of a finished job, keyed by job id.
type RecordStore interface {
	SaveRecord(ctx context.Context, jobId string, record extractionModel.MergedRecord) error
	GetRecord(ctx context.Context, jobId string) (extractionModel.MergedRecord, bool)
	DeleteRecord(ctx context.Context, jobId string)
}
