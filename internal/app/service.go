// Package service provides the core service that builds the payloads
// served by the HTTP API.
package service

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/demo-microservice/internal/domain/payload"
	"github.com/okian/demo-microservice/pkg/logger"
	"github.com/okian/demo-microservice/pkg/metrics"
)

// Payload kinds used as metric labels.
const (
	kindRoot     = "root"
	kindHealth   = "health"
	kindGreeting = "greeting"
	kindInfo     = "info"
)

// RuntimeInfo describes the process host reported by Info.
type RuntimeInfo struct {
	Version string
	OS      string
}

// Service builds response payloads. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	now     func() time.Time
	runtime RuntimeInfo
	metrics *metrics.Manager
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRuntimeInfo overrides the runtime details reported by Info.
func WithRuntimeInfo(info RuntimeInfo) Option {
	return func(s *Service) {
		if info.Version != "" {
			s.runtime.Version = info.Version
		}
		if info.OS != "" {
			s.runtime.OS = info.OS
		}
	}
}

// WithMetrics sets the metrics manager payloads are counted on.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		now: time.Now,
		runtime: RuntimeInfo{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
		},
		metrics: metrics.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Runtime returns the runtime details reported by Info.
func (s *Service) Runtime() RuntimeInfo {
	return s.runtime
}

// Root builds the GET / payload.
func (s *Service) Root(ctx context.Context) payload.Root {
	s.record(ctx, kindRoot)
	return payload.Root{
		Message:   payload.RootMessage,
		Timestamp: s.timestamp(),
		Service:   payload.ServiceName,
		Version:   payload.Version,
	}
}

// Health builds the GET /health payload. It performs no liveness probing.
func (s *Service) Health(ctx context.Context) payload.Health {
	s.record(ctx, kindHealth)
	return payload.Health{
		Status:    payload.StatusUp,
		Timestamp: s.timestamp(),
		Service:   payload.ServiceName,
	}
}

// Greet builds the GET /hello/{name} payload. name is used verbatim.
func (s *Service) Greet(ctx context.Context, name string) payload.Greeting {
	s.record(ctx, kindGreeting, logger.Int("name_len", len(name)))
	return payload.Greeting{
		Message:   payload.GreetingMessage(name),
		Timestamp: s.timestamp(),
		Service:   payload.ServiceName,
	}
}

// Info builds the GET /info payload.
func (s *Service) Info(ctx context.Context) payload.Info {
	s.record(ctx, kindInfo)
	return payload.Info{
		Service:        payload.ServiceName,
		Version:        payload.Version,
		Description:    payload.Description,
		Timestamp:      s.timestamp(),
		RuntimeVersion: s.runtime.Version,
		OSName:         s.runtime.OS,
	}
}

func (s *Service) timestamp() payload.LocalDateTime {
	return payload.NewLocalDateTime(s.now())
}

func (s *Service) record(ctx context.Context, kind string, fields ...logger.Field) {
	s.metrics.RecordPayload(kind)
	if s.logger != nil {
		s.logger.Debug(ctx, "payload built", append(fields, logger.String("payload", kind))...)
	}
}
