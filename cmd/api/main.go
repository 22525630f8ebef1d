// @title           Tender Extraction API
// @version         1.0
// @description     Asynchronous structured extraction from public tender documents.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/TenderExtract/internal/app"
	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/data/store"
	jobmodel "github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/handlers"
	"github.com/akolanti/TenderExtract/internal/job"
	"github.com/akolanti/TenderExtract/internal/middleware"
	"github.com/akolanti/TenderExtract/internal/server"
	"github.com/akolanti/TenderExtract/internal/worker"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

var (
	listenAddr        string
	envFile           string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file")
	flag.Parse()

	settings, err := config.LoadSettings(envFile)
	logger_i.Init(settings)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid settings", "err", err)
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = settings.ListenAddr
	}

	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobStore, recordStore, err := store.Open(serviceContext, settings)
	if err != nil {
		logger.Error("Stores are offline", "err", err)
		os.Exit(1)
	}
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
		RecordStore:       recordStore,
	})

	extractService, err := app.NewExtractService(serviceContext, settings, nil)
	if err != nil {
		logger.Error("Extraction service failed to initialize. Shutting down.", "err", err)
		os.Exit(1)
	}

	handlers.InitJobHandler(service, extractService)
	middleware.Init(settings)

	worker.InitServices(service, extractService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
