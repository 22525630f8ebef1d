package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/TenderExtract/internal/adapter/utils"
	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/middleware"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// Routes is the public API, every handler already wrapped in the middleware.
func Routes() []utils.Route {
	return []utils.Route{
		{Method: http.MethodGet, Pattern: "/health", Handler: middleware.GetHandler},
		{Method: http.MethodPost, Pattern: "/extract", Handler: middleware.ExtractHandler},
		{Method: http.MethodPost, Pattern: "/detect", Handler: middleware.DetectHandler},
		{Method: http.MethodPost, Pattern: "/ingest", Handler: middleware.PostIngestHandler},
		{Method: http.MethodGet, Pattern: "/status/{id}", Handler: middleware.GetStatusHandler},
		{Method: http.MethodGet, Pattern: "/export/{id}", Handler: middleware.ExportHandler},
	}
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      utils.NewRouter(Routes()),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "err", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
