package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for each AddOperation call.
const (
	OutcomeSaved          = "saved"
	OutcomePriceFailed    = "price_failed"
	OutcomeEvaluateFailed = "evaluate_failed"
	OutcomeDebitFailed    = "debit_failed"
	OutcomeSaveFailed     = "save_failed"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calc",
			Name:      "operations_total",
			Help:      "Operations processed by the pipeline, by outcome.",
		},
		[]string{"outcome"},
	)

	saveRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "calc",
			Name:      "save_retries_total",
			Help:      "Retried attempts to persist an operation record.",
		},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "calc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		operations,
		saveRetries,
		httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordOperation(outcome string) {
	operations.WithLabelValues(outcome).Inc()
}

func RecordSaveRetry() {
	saveRetries.Inc()
}

func ObserveHTTP(method, route string, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
