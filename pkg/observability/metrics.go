package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Tracking write path
	TrackingOpsTotal      *prometheus.CounterVec
	TrackingFailuresTotal *prometheus.CounterVec
	TrackingDroppedTotal  prometheus.Counter

	// Snapshot cache
	SnapshotCacheHitsTotal    *prometheus.CounterVec
	SnapshotCacheMissesTotal  prometheus.Counter
	SnapshotRecomputeDuration prometheus.Histogram

	// Leaderboard and event stream
	HotLeaderboardSize prometheus.Gauge
	EventStreamLength  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// allocates a private one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		TrackingOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_tracking_ops_total",
				Help: "Total number of tracking writes dispatched",
			},
			[]string{"op"},
		),
		TrackingFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_tracking_failures_total",
				Help: "Tracking writes that failed against the backing store",
			},
			[]string{"op"},
		),
		TrackingDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_tracking_dropped_total",
				Help: "Tracking writes dropped because the dispatch queue was full",
			},
		),
		SnapshotCacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_snapshot_cache_hits_total",
				Help: "Aggregate snapshot cache hits",
			},
			[]string{"tier"},
		),
		SnapshotCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_snapshot_cache_misses_total",
				Help: "Aggregate snapshot cache misses that forced a recompute",
			},
		),
		SnapshotRecomputeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulse_snapshot_recompute_duration_seconds",
				Help:    "Time spent recomputing an aggregate snapshot",
				Buckets: prometheus.DefBuckets,
			},
		),
		HotLeaderboardSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_hot_leaderboard_size",
				Help: "Number of items on the hot leaderboard",
			},
		),
		EventStreamLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_event_stream_length",
				Help: "Current length of the raw tracking event stream",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.TrackingOpsTotal,
		m.TrackingFailuresTotal,
		m.TrackingDroppedTotal,
		m.SnapshotCacheHitsTotal,
		m.SnapshotCacheMissesTotal,
		m.SnapshotRecomputeDuration,
		m.HotLeaderboardSize,
		m.EventStreamLength,
	)

	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
