package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "home_values"

// Metrics holds the Prometheus collectors for the snapshot build and the
// dashboard API.
type Metrics struct {
	RecordsLoaded   prometheus.Gauge
	DatesLoaded     prometheus.Gauge
	BuildDuration   prometheus.Histogram
	UndefinedGrowth *prometheus.GaugeVec // labels: window={ytd,3yr,10yr}
	SnapshotReady   prometheus.Gauge

	// Selection metrics.
	SelectionRequests *prometheus.CounterVec   // labels: control, outcome={ok,invalid,unknown}
	SelectionRows     *prometheus.HistogramVec // labels: control
	RenderCache       *prometheus.CounterVec   // labels: chart={ts,ranking}, result={hit,miss}

	PublishedMessages prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "County rows in the current snapshot.",
		}),
		DatesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dates_loaded",
			Help:      "Monthly date columns in the current snapshot.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete load-and-derive cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		UndefinedGrowth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undefined_growth",
			Help:      "Counties whose annualized growth is undefined, by window.",
		}, []string{"window"}),
		SnapshotReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_ready",
			Help:      "1 once the snapshot has been built, 0 otherwise.",
		}),
		SelectionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_requests_total",
			Help:      "Chart recomputations by control and outcome.",
		}, []string{"control", "outcome"}),
		SelectionRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_rows",
			Help:      "Rows returned per chart recomputation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}, []string{"control"}),
		RenderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_total",
			Help:      "Chart image cache lookups by chart and result.",
		}, []string{"chart", "result"}),
		PublishedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_messages_total",
			Help:      "Derived records written to the sink topic.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsLoaded,
		m.DatesLoaded,
		m.BuildDuration,
		m.UndefinedGrowth,
		m.SnapshotReady,
		m.SelectionRequests,
		m.SelectionRows,
		m.RenderCache,
		m.PublishedMessages,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a private registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
