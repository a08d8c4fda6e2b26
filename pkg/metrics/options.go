package metrics

import (
	"maps"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the first segment of every metric name. Empty keeps "demo".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the second segment of every metric name. Empty keeps "microservice".
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets replaces the millisecond buckets used by the latency
// histograms. Buckets are sorted, duplicates dropped, and non-positive
// bounds ignored; an empty result keeps DefaultBuckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		kept := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			if b > 0 {
				kept = append(kept, b)
			}
		}
		slices.Sort(kept)
		kept = slices.Compact(kept)
		if len(kept) > 0 {
			m.histogramBuckets = kept
		}
	}
}

// WithMetricsEnabled switches recording on or off. A disabled manager still
// registers its collectors, so scrapes return empty families.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often runtime gauges are refreshed.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels, such as env or region, to every metric.
// The map is copied.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of a
// private one.
func WithPrometheusRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
