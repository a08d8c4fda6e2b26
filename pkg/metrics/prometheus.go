// Package metrics provides Prometheus metrics for the demo microservice.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// DefaultBuckets are the latency histogram buckets, in milliseconds.
var DefaultBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         *prometheus.Registry

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Payloads built per route
	payloadsBuilt *prometheus.CounterVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	panicsRecovered     prometheus.Counter

	buildInfo *prometheus.GaugeVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance, used when no manager is injected.
var globalManager = NewManager() //nolint:gochecknoglobals // intentional global for singleton metrics manager

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "demo",
		subsystem:        "microservice",
		histogramBuckets: DefaultBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
	}

	for _, opt := range opts {
		opt(m)
	}
	// Each manager owns a private registry unless one is given.
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint, method and status",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_in_flight",
		Help:        "Number of HTTP requests currently being served",
		ConstLabels: constLabels,
	})

	m.payloadsBuilt = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "payloads_built_total",
			Help:        "Total number of response payloads built, by payload kind",
			ConstLabels: constLabels,
		},
		[]string{"payload"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type and severity",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint, method and type",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.panicsRecovered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "panics_recovered_total",
		Help:        "Total number of handler panics recovered into 500 responses",
		ConstLabels: constLabels,
	})

	m.buildInfo = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "build_info",
			Help:        "Constant 1, labelled with service identity",
			ConstLabels: constLabels,
		},
		[]string{"service", "version", "go_version"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})
}

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge snapshots should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordHTTPRequest increments the request counter.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes a request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// IncInFlight and DecInFlight bracket a request.
func (m *Manager) IncInFlight() {
	if m.enabled {
		m.httpInFlight.Inc()
	}
}

func (m *Manager) DecInFlight() {
	if m.enabled {
		m.httpInFlight.Dec()
	}
}

// RecordPayload counts a payload of the given kind.
func (m *Manager) RecordPayload(kind string) {
	if !m.enabled {
		return
	}
	m.payloadsBuilt.WithLabelValues(kind).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordPanic counts a recovered panic.
func (m *Manager) RecordPanic() {
	if m.enabled {
		m.panicsRecovered.Inc()
	}
}

// SetBuildInfo publishes the service identity.
func (m *Manager) SetBuildInfo(service, version, goVersion string) {
	if !m.enabled {
		return
	}
	m.buildInfo.Reset()
	m.buildInfo.WithLabelValues(service, version, goVersion).Set(1)
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Default returns the global manager.
func Default() *Manager { return globalManager }
