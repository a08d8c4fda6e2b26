package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/demo-microservice/internal/adapters/http/api"
	"github.com/okian/demo-microservice/internal/adapters/http/swagger"
	app "github.com/okian/demo-microservice/internal/app"
	"github.com/okian/demo-microservice/internal/config"
	"github.com/okian/demo-microservice/internal/domain/payload"
	"github.com/okian/demo-microservice/pkg/logger"
	"github.com/okian/demo-microservice/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const nanosecondsPerMillisecond = 1e6

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	m := newMetrics(cfg)
	if cfg.MetricsEnabled {
		m.SetBuildInfo(payload.ServiceName, payload.Version, runtime.Version())
		go startSystemMetricsUpdater(ctx, m)
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithMetrics(m),
	)

	handler, err := buildHandler(ctx, cfg, svc, log.Named("http"), m)
	if err != nil {
		log.Error(ctx, "failed to build HTTP handler", logger.Error(err))
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       cfg.IdleTimeout(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		MaxHeaderBytes:    cfg.MaxHeaderBytesLimit(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("service", payload.ServiceName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return 1
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return 1
	}

	log.Info(ctx, "server stopped")
	return 0
}

// newMetrics builds the metrics manager described by cfg on its own registry.
func newMetrics(cfg *config.Config) *metrics.Manager {
	return metrics.NewManager(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.HistogramBuckets()),
		metrics.WithCustomLabels(cfg.ConstLabels()),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
		metrics.WithPrometheusRegistry(prometheus.NewRegistry()),
	)
}

// buildHandler assembles the mux: API routes, optional docs and metrics
// routes, wrapped in the server-wide middleware chain.
func buildHandler(ctx context.Context, cfg *config.Config, svc api.Dependencies, log logger.Logger, m *metrics.Manager) (http.Handler, error) {
	mux := http.NewServeMux()

	api.NewServer(svc, m).Register(ctx, mux)

	if cfg.DocsEnabled {
		var opts []swagger.Option
		if cfg.DocsAssetsDir != "" {
			if err := swagger.CheckAssetsDir(cfg.DocsAssetsDir); err != nil {
				return nil, err
			}
			opts = append(opts, swagger.WithAssets(os.DirFS(cfg.DocsAssetsDir)))
		}
		swagger.Register(ctx, mux, opts...)
	}
	if cfg.MetricsEnabled {
		mux.Handle("GET "+cfg.MetricsPath, m.Handler())
	}

	return api.Wrap(mux, log, m), nil
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, m *metrics.Manager) {
	ticker := time.NewTicker(m.RefreshInterval())
	defer ticker.Stop()

	updateSystemMetrics(m)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics(m)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics(m *metrics.Manager) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.UpdateSystemMemoryUsage(ms.Alloc)

	m.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if ms.NumGC > 0 {
		avgPauseMs := float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond
		m.RecordSystemGCPauseTime(avgPauseMs)
	}
}
