package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faultchar"

// Execution outcome labels.
const (
	OutcomePass      = "pass"
	OutcomeFail      = "fail"
	OutcomeError     = "error"
	OutcomeForbidden = "forbidden"
)

// Metrics holds the characterization metrics. Every instance owns its own
// registry, so tests and embedded drivers never collide on registration.
//
// All recording methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionRounds    *prometheus.HistogramVec

	// Execution metrics
	probesRequested   *prometheus.CounterVec
	executions        *prometheus.CounterVec
	executionDuration prometheus.Histogram
	combinationsFound *prometheus.CounterVec

	// Storage metrics
	storeDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		sessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Characterization sessions started, by algorithm.",
		}, []string{"algorithm"}),
		sessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Characterization sessions finished, by algorithm and final status.",
		}, []string{"algorithm", "status"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Characterization sessions currently running.",
		}),
		sessionRounds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_rounds",
			Help:      "Refinement rounds per finished session.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		}, []string{"algorithm"}),

		probesRequested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_requested_total",
			Help:      "Test inputs requested by algorithms after the initial suite.",
		}, []string{"algorithm"}),
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Executed test inputs, by outcome.",
		}, []string{"outcome"}),
		executionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Duration of single test executions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
		}),
		combinationsFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failure_inducing_combinations_total",
			Help:      "Failure-inducing combinations reported at session completion.",
		}, []string{"algorithm"}),

		storeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_transaction_duration_seconds",
			Help:      "Duration of storage transactions, by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}, []string{"operation"}),
	}
}

// WithProcessCollectors additionally registers the Go runtime and process
// collectors. The CLI server enables them; tests leave them off.
func (m *Metrics) WithProcessCollectors() *Metrics {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding all metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an http.Handler exposing the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionStarted records a session entering RUNNING.
func (m *Metrics) SessionStarted(algorithm string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(algorithm).Inc()
	m.activeSessions.Inc()
}

// SessionFinished records a session reaching a terminal status after rounds
// refinement rounds.
func (m *Metrics) SessionFinished(algorithm, status string, rounds int) {
	if m == nil {
		return
	}
	m.sessionsFinished.WithLabelValues(algorithm, status).Inc()
	m.sessionRounds.WithLabelValues(algorithm).Observe(float64(rounds))
	m.activeSessions.Dec()
}

// ProbesRequested records n test inputs requested by an algorithm.
func (m *Metrics) ProbesRequested(algorithm string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.probesRequested.WithLabelValues(algorithm).Add(float64(n))
}

// ExecutionObserved records one execution attempt.
func (m *Metrics) ExecutionObserved(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeForbidden {
		m.executionDuration.Observe(d.Seconds())
	}
}

// CombinationsFound records the size of a session's read-out.
func (m *Metrics) CombinationsFound(algorithm string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.combinationsFound.WithLabelValues(algorithm).Add(float64(n))
}

// StoreObserved records the duration of a storage transaction.
func (m *Metrics) StoreObserved(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(d.Seconds())
}
