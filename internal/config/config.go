// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HTTP server timeouts in milliseconds.
	ReadTimeoutMS       int `koanf:"read_timeout_ms"`
	ReadHeaderTimeoutMS int `koanf:"read_header_timeout_ms"`
	WriteTimeoutMS      int `koanf:"write_timeout_ms"`
	IdleTimeoutMS       int `koanf:"idle_timeout_ms"`

	// MaxHeaderBytes caps request header size, in human units such as "1MiB" or "64KB".
	MaxHeaderBytes string `koanf:"max_header_bytes"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// MetricsEnabled toggles recording and the exposition route at MetricsPath.
	MetricsEnabled bool   `koanf:"metrics_enabled"`
	MetricsPath    string `koanf:"metrics_path"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets lists latency histogram bounds in milliseconds, comma separated.
	MetricsBuckets string `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels added to every metric, as "k=v,k=v".
	MetricsLabels string `koanf:"metrics_labels"`

	// MetricsRefreshIntervalMS is how often runtime gauges are refreshed.
	MetricsRefreshIntervalMS int `koanf:"metrics_refresh_interval_ms"`

	// DocsEnabled serves /openapi.yaml and /api-docs.
	DocsEnabled bool `koanf:"docs_enabled"`

	// DocsAssetsDir, when set, holds redoc.standalone.js and is served
	// locally instead of the CDN copy.
	DocsAssetsDir string `koanf:"docs_assets_dir"`
}

// metricNamePart matches a namespace, subsystem or label name.
var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":8080",
		ReadTimeoutMS:            10_000,
		ReadHeaderTimeoutMS:      5_000,
		WriteTimeoutMS:           10_000,
		IdleTimeoutMS:            60_000,
		MaxHeaderBytes:           "1MiB",
		ShutdownTimeoutMS:        30_000,
		MetricsEnabled:           true,
		MetricsPath:              "/metrics",
		MetricsNamespace:         "demo",
		MetricsSubsystem:         "microservice",
		MetricsBuckets:           "1,2.5,5,10,25,50,100,250,500,1000,2500,5000",
		MetricsRefreshIntervalMS: 10_000,
		DocsEnabled:              true,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ReadTimeoutMS <= 0, c.ReadHeaderTimeoutMS <= 0, c.WriteTimeoutMS <= 0, c.IdleTimeoutMS <= 0:
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalidConfig)
	case c.ShutdownTimeoutMS <= 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive", ErrInvalidConfig)
	case c.MetricsEnabled && !strings.HasPrefix(c.MetricsPath, "/"):
		return fmt.Errorf("%w: metrics_path must start with /", ErrInvalidConfig)
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	if n, err := units.RAMInBytes(c.MaxHeaderBytes); err != nil || n <= 0 {
		return fmt.Errorf("%w: max_header_bytes must be a positive size, got %q", ErrInvalidConfig, c.MaxHeaderBytes)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration { return ms(c.ReadTimeoutMS) }

// ReadHeaderTimeout returns ReadHeaderTimeoutMS as a duration.
func (c *Config) ReadHeaderTimeout() time.Duration { return ms(c.ReadHeaderTimeoutMS) }

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration { return ms(c.WriteTimeoutMS) }

// IdleTimeout returns IdleTimeoutMS as a duration.
func (c *Config) IdleTimeout() time.Duration { return ms(c.IdleTimeoutMS) }

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration { return ms(c.ShutdownTimeoutMS) }

// MaxHeaderBytesLimit returns MaxHeaderBytes in bytes, or 0 (the net/http
// default) when it does not parse.
func (c *Config) MaxHeaderBytesLimit() int {
	n, err := units.RAMInBytes(c.MaxHeaderBytes)
	if err != nil || n <= 0 {
		return 0
	}
	return int(n)
}

func (c *Config) validateMetrics() error {
	if !metricNamePart.MatchString(c.MetricsNamespace) || !metricNamePart.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_namespace and metrics_subsystem must be metric name segments", ErrInvalidConfig)
	}
	if c.MetricsRefreshIntervalMS <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	if _, err := parseBuckets(c.MetricsBuckets); err != nil {
		return fmt.Errorf("%w: metrics_buckets: %w", ErrInvalidConfig, err)
	}
	if _, err := parseLabels(c.MetricsLabels); err != nil {
		return fmt.Errorf("%w: metrics_labels: %w", ErrInvalidConfig, err)
	}
	return nil
}

// MetricsRefreshInterval returns MetricsRefreshIntervalMS as a duration.
func (c *Config) MetricsRefreshInterval() time.Duration { return ms(c.MetricsRefreshIntervalMS) }

// HistogramBuckets returns the parsed MetricsBuckets, or nil when invalid.
func (c *Config) HistogramBuckets() []float64 {
	b, err := parseBuckets(c.MetricsBuckets)
	if err != nil {
		return nil
	}
	return b
}

// ConstLabels returns the parsed MetricsLabels, or nil when invalid.
func (c *Config) ConstLabels() map[string]string {
	l, err := parseLabels(c.MetricsLabels)
	if err != nil {
		return nil
	}
	return l
}

func parseBuckets(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("bucket %v must be positive", v)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseLabels(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || !metricNamePart.MatchString(k) || strings.HasPrefix(k, "__") {
			return nil, fmt.Errorf("invalid label %q", pair)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
