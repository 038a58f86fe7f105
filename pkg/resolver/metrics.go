package resolver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for rule resolution.
type Metrics struct {
	// Per-rule outcomes, labeled by outcome kind
	rulesResolved *prometheus.CounterVec

	// Whole-run counters and latency
	runs        prometheus.Counter
	runDuration prometheus.Histogram

	// Parse cache effectiveness
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetrics creates a Metrics instance registered against reg. Passing nil
// uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		rulesResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halcyon_resolver_rules_resolved_total",
				Help: "Total number of rules resolved, by outcome",
			},
			[]string{"outcome"},
		),

		runs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "halcyon_resolver_runs_total",
				Help: "Total number of resolution runs",
			},
		),

		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "halcyon_resolver_run_duration_seconds",
				Help:    "Duration of resolution runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		cacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "halcyon_resolver_parse_cache_hits_total",
				Help: "Total number of parse cache hits",
			},
		),

		cacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "halcyon_resolver_parse_cache_misses_total",
				Help: "Total number of parse cache misses",
			},
		),
	}
}

// RecordRule records one resolved rule with its outcome kind: "bool",
// "number", "string", or the error category.
func (m *Metrics) RecordRule(outcome string) {
	if m == nil {
		return
	}
	m.rulesResolved.WithLabelValues(outcome).Inc()
}

// RecordRun records one completed resolution run.
func (m *Metrics) RecordRun(duration time.Duration) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.runDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a parse cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss records a parse cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
