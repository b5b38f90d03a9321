package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	IncidentsLoaded prometheus.Gauge
	Locations       prometheus.Gauge
	LoadDuration    prometheus.Histogram

	FigureRequests  *prometheus.CounterVec // labels: outcome={ok,unknown_location}
	ComputeDuration prometheus.Histogram
	PNGRenders      *prometheus.CounterVec // labels: figure, outcome={ok,error}
}

const namespace = "crime_dashboard"

func newMetrics() *Metrics {
	return &Metrics{
		IncidentsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incidents_loaded",
			Help:      "Rows in the in-memory incident table.",
		}),
		Locations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locations",
			Help:      "Distinct locations offered in the selector.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent loading the incident table at startup.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FigureRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "figure_requests_total",
			Help:      "Selection events answered, by outcome.",
		}, []string{"outcome"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "figure_compute_duration_seconds",
			Help:      "Time to filter the table and build all seven figures.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		PNGRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "png_renders_total",
			Help:      "PNG figure exports by figure and outcome.",
		}, []string{"figure", "outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IncidentsLoaded,
		m.Locations,
		m.LoadDuration,
		m.FigureRequests,
		m.ComputeDuration,
		m.PNGRenders,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
