package api

import (
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id         string            `json:"id" example:"job_cz109"`
	DocumentId string            `json:"document_id,omitempty" example:"ihale-2024-118"`
	Result     Result            `json:"result"`
	Error      *JobOutgoingError `json:"error,omitempty"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status     string  `json:"status" example:"COMPLETE"`
	Step       string  `json:"step,omitempty" example:"Extracting"`
	Confidence float64 `json:"confidence,omitempty" example:"0.85"`
	TableCount int     `json:"table_count,omitempty" example:"2"`
	// Record is only present once the job is complete.
	Record *extractionModel.MergedRecord `json:"record,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
	ExportURL string `json:"export_url"`
}

type DetectResponse struct {
	HasTables      bool     `json:"has_tables"`
	EstimatedCount int      `json:"estimated_count"`
	Confidence     float64  `json:"confidence"`
	Indicators     []string `json:"indicators,omitempty"`
}

// requests---------------------

type ExtractRequest struct {
	DocumentId   string `json:"document_id,omitempty" example:"ihale-2024-118"`
	DocumentName string `json:"document_name,omitempty" example:"Teknik Şartname"`
	Text         string `json:"text" validate:"required"`
}

type DetectRequest struct {
	Text string `json:"text" validate:"required"`
}
