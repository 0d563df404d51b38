package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// overlay service.
type Metrics struct {
	// Snapshot polling metrics.
	SnapshotFetches       *prometheus.CounterVec // labels: outcome={success,skipped,aborted,upstream_error,decode_error,error}
	SnapshotFetchDuration prometheus.Histogram
	PollerRunning         prometheus.Gauge

	// Overlay rendering metrics.
	OverlaysRendered prometheus.Counter
	RenderedFeatures prometheus.Gauge

	// Overlay publishing metrics.
	OverlaysPublished prometheus.Counter
	PublishErrors     prometheus.Counter

	// Station directory metrics.
	DirectoryFetches  *prometheus.CounterVec // labels: outcome={success,error}
	DirectoryStations prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intensity_overlay",
			Name:      "snapshot_fetches_total",
			Help:      "Snapshot fetch attempts by outcome.",
		}, []string{"outcome"}),
		SnapshotFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "intensity_overlay",
			Name:      "snapshot_fetch_duration_seconds",
			Help:      "Duration of successful snapshot fetches.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "intensity_overlay",
			Name:      "poller_running",
			Help:      "1 when the snapshot poller is active, 0 when shut down.",
		}),
		OverlaysRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intensity_overlay",
			Name:      "overlays_rendered_total",
			Help:      "Total overlay recomputations from applied snapshots.",
		}),
		RenderedFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "intensity_overlay",
			Name:      "rendered_features",
			Help:      "Point features in the most recently rendered overlay.",
		}),
		OverlaysPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intensity_overlay",
			Name:      "overlays_published_total",
			Help:      "Total overlays published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intensity_overlay",
			Name:      "publish_errors_total",
			Help:      "Total overlay publish failures.",
		}),
		DirectoryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intensity_overlay",
			Name:      "directory_fetches_total",
			Help:      "Station directory fetch attempts by outcome.",
		}, []string{"outcome"}),
		DirectoryStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "intensity_overlay",
			Name:      "directory_stations",
			Help:      "Stations in the cached directory.",
		}),
	}

	prometheus.MustRegister(
		m.SnapshotFetches,
		m.SnapshotFetchDuration,
		m.PollerRunning,
		m.OverlaysRendered,
		m.RenderedFeatures,
		m.OverlaysPublished,
		m.PublishErrors,
		m.DirectoryFetches,
		m.DirectoryStations,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "intensity_overlay", Name: "snapshot_fetches_total"}, []string{"outcome"}),
		SnapshotFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "intensity_overlay", Name: "snapshot_fetch_duration_seconds"}),
		PollerRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "intensity_overlay", Name: "poller_running"}),
		OverlaysRendered:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "intensity_overlay", Name: "overlays_rendered_total"}),
		RenderedFeatures:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "intensity_overlay", Name: "rendered_features"}),
		OverlaysPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "intensity_overlay", Name: "overlays_published_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "intensity_overlay", Name: "publish_errors_total"}),
		DirectoryFetches:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "intensity_overlay", Name: "directory_fetches_total"}, []string{"outcome"}),
		DirectoryStations:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "intensity_overlay", Name: "directory_stations"}),
	}
}
