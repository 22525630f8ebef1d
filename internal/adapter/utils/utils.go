package utils

import (
	"net/http"
	"strings"

	_ "github.com/akolanti/TenderExtract/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

// Route is one public endpoint of the extraction API.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// NewID names jobs and traces.
func NewID() string {
	return uuid.NewString()
}

// PathID is the {id} segment of a job route, "" when absent.
func PathID(request *http.Request) string {
	return strings.TrimSpace(chi.URLParam(request, "id"))
}

// NewRouter mounts routes beside the swagger UI and the prometheus scrape
// endpoint. Neither of those goes through the API middleware.
func NewRouter(routes []Route) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Handle("/metrics", promhttp.Handler())

	for _, route := range routes {
		r.Method(route.Method, route.Pattern, route.Handler)
	}
	return r
}
