package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/handlers"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type authSettings struct {
	token  string
	bypass bool
}

var auth authSettings

// Init copies the auth settings the middleware checks against. It must run
// before the server starts accepting requests.
func Init(settings config.Settings) {
	auth = authSettings{token: settings.AuthToken, bypass: settings.NoAuthBypass}
}

var GetHandler = Wrap(handlers.GetHandler)

var ExtractHandler = Wrap(handlers.ExtractHandler)
var DetectHandler = Wrap(handlers.DetectHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var ExportHandler = Wrap(handlers.ExportHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := processRequest(requestResponseStruct{req: r, writer: rec})
		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}
		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received", "path", re.req.URL.Path)

	for _, step := range []func(requestResponseStruct) requestResponseStruct{injectTrace, authenticate, rateLimiter} {
		re = step(re)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return re
		}
	}
	return re
}
