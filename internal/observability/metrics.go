package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "soacha_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Alerting metrics.
	AlertsGenerated   *prometheus.CounterVec // labels: type
	AlertsSuppressed  prometheus.Counter
	AlertsPersisted   prometheus.Counter
	PredictiveAlerts  *prometheus.CounterVec // labels: type
	EvaluationRunning prometheus.Gauge

	// Weather metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error,fallback}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram

	// Publishing metrics.
	AlertsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Storage and API metrics.
	StoreErrors         *prometheus.CounterVec // labels: op={load,save}
	PhotosUploaded      prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route, status
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_generated_total",
			Help:      "Candidate alerts produced by the weather rules, by type.",
		}, []string{"type"}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Candidate alerts discarded as recent duplicates.",
		}),
		AlertsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_persisted_total",
			Help:      "Alerts appended to the alert log.",
		}),
		PredictiveAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictive_alerts_total",
			Help:      "Predictive advisories returned, by type.",
		}, []string{"type"}),
		EvaluationRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evaluation_running",
			Help:      "1 when background alert evaluation is active, 0 otherwise.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Weather lookups by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeatherMap request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4},
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_published_total",
			Help:      "Alerts written to the alert topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_publish_errors_total",
			Help:      "Failed alert topic writes.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Document store failures by operation.",
		}, []string{"op"}),
		PhotosUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_uploaded_total",
			Help:      "Photos accepted by the upload endpoint.",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by method, route pattern and status.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}

	prometheus.MustRegister(
		m.AlertsGenerated,
		m.AlertsSuppressed,
		m.AlertsPersisted,
		m.PredictiveAlerts,
		m.EvaluationRunning,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.AlertsPublished,
		m.PublishErrors,
		m.StoreErrors,
		m.PhotosUploaded,
		m.HTTPRequestDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AlertsGenerated:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "alerts_generated_total"}, []string{"type"}),
		AlertsSuppressed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "alerts_suppressed_total"}),
		AlertsPersisted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "alerts_persisted_total"}),
		PredictiveAlerts:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "predictive_alerts_total"}, []string{"type"}),
		EvaluationRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "evaluation_running"}),
		WeatherRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "weather_cache_total"}, []string{"result"}),
		WeatherAPIDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "weather_api_duration_seconds"}),
		AlertsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "alerts_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "alert_publish_errors_total"}),
		StoreErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "store_errors_total"}, []string{"op"}),
		PhotosUploaded:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "photos_uploaded_total"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds"}, []string{"method", "route", "status"}),
	}
}
