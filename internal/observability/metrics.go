package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	gradedSubmissionsTotal *prometheus.CounterVec
	hintDeliveriesTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the student API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kodelab_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kodelab_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		gradedSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kodelab_graded_submissions_total",
			Help: "Total number of graded submissions by final verdict.",
		}, []string{"verdict"})

		hintDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kodelab_hint_deliveries_total",
			Help: "Total number of hints delivered by level and source.",
		}, []string{"level", "source"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, gradedSubmissionsTotal, hintDeliveriesTotal)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// GradedSubmissions exposes the verdict counter.
func GradedSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradedSubmissionsTotal
}

// HintDeliveries exposes the hint delivery counter. The source label
// distinguishes cached deliveries from fresh generations.
func HintDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return hintDeliveriesTotal
}
