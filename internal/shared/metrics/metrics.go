// Package metrics registers the service's Prometheus collectors and serves them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

var (
	// Registry holds every collector exposed on /metrics.
	Registry = prometheus.NewRegistry()

	analysisRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_requests_total",
		Help: "Analyses attempted, by engine and outcome.",
	}, []string{"engine", "outcome"})

	analysisDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Time spent producing an analysis result.",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"engine"})

	uploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "upload_bytes",
		Help:    "Size of uploaded transcript documents.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		analysisRequests,
		analysisDuration,
		uploadBytes,
		httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveAnalysis records one analysis attempt. Cached results are counted
// but do not contribute to the duration histogram.
func ObserveAnalysis(engine, outcome string, elapsed time.Duration) {
	analysisRequests.WithLabelValues(engine, outcome).Inc()
	if outcome != OutcomeCached {
		analysisDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
	}
}

// ObserveUpload records an accepted upload size.
func ObserveUpload(size int64) {
	if size < 0 {
		size = 0
	}
	uploadBytes.Observe(float64(size))
}

// ObserveHTTP records a served request. route is the matched pattern, not the raw path.
func ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
