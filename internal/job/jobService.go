package job

import (
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
)

// Service is the shared state between the HTTP handlers that enqueue
// extraction jobs and the worker pool that runs them.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	RecordStore       jobModel.RecordStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	RecordStore       jobModel.RecordStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		RecordStore:       cfg.RecordStore,
	}
}
