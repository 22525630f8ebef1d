package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/TenderExtract/internal/api"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
		ExportURL: fmt.Sprintf("export/%s", id),
	}
}

// ToAPIResponse maps a stored job to its external shape. record may be nil.
func ToAPIResponse(job jobModel.Job, record *extractionModel.MergedRecord) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:     string(job.Status),
		Step:       string(job.CurrentStep),
		Confidence: job.JobPayload.Confidence,
		TableCount: job.JobPayload.TableCount,
	}
	if job.Status == jobModel.JobStatusComplete {
		result.Record = record
	}

	return api.JobResponse{
		Id:         job.Id,
		DocumentId: job.JobPayload.DocumentId,
		StartTime:  job.CreatedTime,
		EndTime:    job.EndTime,
		Error:      errorPtr,
		Result:     result,
	}
}

func ToDetectResponse(d detector.Detection) api.DetectResponse {
	return api.DetectResponse{
		HasTables:      d.HasTables,
		EstimatedCount: d.EstimatedCount,
		Confidence:     d.Confidence,
		Indicators:     d.Indicators,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
