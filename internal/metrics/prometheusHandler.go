package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of extraction jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var backendAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "extract_backend_attempts_total",
	Help: "Backend calls labelled by backend and outcome",
}, []string{"backend", "outcome"})

var emptyResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "extract_empty_results_total",
	Help: "Chunks that ended with an empty result after retries",
}, []string{"backend"})

var batchesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "extract_batches_total",
	Help: "Scheduler batches drained, by backend",
}, []string{"backend"})

var duplicateTables = promauto.NewCounter(prometheus.CounterOpts{
	Name: "extract_duplicate_tables_total",
	Help: "Tables dropped by the deduplicator",
})

var tableCategories = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "extract_table_categories_total",
	Help: "Categorized tables by category",
}, []string{"category"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CountAttempt(backend, outcome string) {
	backendAttempts.WithLabelValues(backend, outcome).Inc()
}

func CountEmptyResult(backend string) {
	emptyResults.WithLabelValues(backend).Inc()
}

func CountBatch(backend string) {
	batchesCompleted.WithLabelValues(backend).Inc()
}

func CountDuplicateTables(n int) {
	duplicateTables.Add(float64(n))
}

func CountTableCategory(category string) {
	tableCategories.WithLabelValues(category).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "extract_job_duration_seconds",
	Help:    "Total time spent extracting one document.",
	Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of pipeline steps and external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 90},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
