// Package metrics provides Prometheus metrics for log retrieval and feedback.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeMissingIdentity = "missing_identity"
	OutcomeError           = "error"
)

// Scope labels.
const (
	ScopeUser      = "user"
	ScopeAll       = "all"
	ScopeAnonymous = "anonymous"
)

// Metrics contains the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	retrievalsTotal   *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	retrievalRows     *prometheus.HistogramVec
	feedbackTotal     *prometheus.CounterVec
	settingsCache     *prometheus.CounterVec
}

// New creates metrics registered on a fresh registry together with the Go
// runtime and process collectors.
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.NewRegistry(), true)
}

// NewWithRegistry creates metrics on registry. withRuntime adds the Go and
// process collectors.
func NewWithRegistry(registry *prometheus.Registry, withRuntime bool) (*Metrics, error) {
	m := &Metrics{registry: registry}

	m.retrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modlog_retrievals_total",
			Help: "Total number of detection log retrievals",
		},
		[]string{"gateway", "scope", "outcome"},
	)
	m.retrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modlog_retrieval_duration_seconds",
			Help:    "Time taken to retrieve a page of detection logs",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"gateway", "scope"},
	)
	m.retrievalRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modlog_retrieval_rows",
			Help:    "Number of detection logs returned per retrieval",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
		[]string{"gateway"},
	)
	m.feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modlog_feedback_operations_total",
			Help: "Total number of feedback operations",
		},
		[]string{"operation", "outcome"},
	)
	m.settingsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modlog_settings_cache_total",
			Help: "Settings cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	toRegister := []prometheus.Collector{
		m.retrievalsTotal,
		m.retrievalDuration,
		m.retrievalRows,
		m.feedbackTotal,
		m.settingsCache,
	}
	if withRuntime {
		toRegister = append(toRegister,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range toRegister {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRetrieval records one retrieval. rows is ignored unless the outcome
// is a success.
func (m *Metrics) ObserveRetrieval(gateway, scope, outcome string, d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.retrievalsTotal.WithLabelValues(gateway, scope, outcome).Inc()
	m.retrievalDuration.WithLabelValues(gateway, scope).Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.retrievalRows.WithLabelValues(gateway).Observe(float64(rows))
	}
}

// ObserveFeedback records a feedback operation (submit, list, update_status).
func (m *Metrics) ObserveFeedback(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.feedbackTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveSettingsCache records a settings cache hit or miss.
func (m *Metrics) ObserveSettingsCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.settingsCache.WithLabelValues(result).Inc()
}
