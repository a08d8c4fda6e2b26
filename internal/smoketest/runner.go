package smoketest

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/okian/demo-microservice/pkg/logger"
)

// percentageMultiplier converts a ratio into a percentage.
const percentageMultiplier = 100

// unknownPath never matches a route.
const unknownPath = "/smoke-test-unknown-path"

// Run executes the complete smoke run. It returns the collected statistics
// and an error wrapping ErrProbesFailed if any probe failed.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stats := &Stats{
		PerRoute:  make(map[string]int),
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Unknown paths must not be routed
	if err := checkUnknownPath(ctx, config); err != nil {
		return stats, fmt.Errorf("unknown path check failed: %w", err)
	}

	// Step 3: Probe every route concurrently
	runProbes(ctx, config, generateProbes(config.Requests), stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrProbesFailed, stats.Failed, stats.Sent)
	}

	logger.Get().Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running and reports UP.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	p := Probe{Route: RouteHealth, Path: "/health"}
	if err := sendProbe(ctx, client, config.BaseURL, p); err != nil {
		return err
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func checkUnknownPath(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+unknownPath, "")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	return verifyNotFound(resp.StatusCode)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate float64
	if stats.Sent > 0 {
		passRate = float64(stats.Passed) / float64(stats.Sent) * percentageMultiplier
	}
	var rps float64
	if stats.Duration > 0 {
		rps = float64(stats.Sent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Duration("duration", stats.Duration),
		logger.String("elapsed", units.HumanDuration(stats.Duration)),
		logger.Int("sent", stats.Sent),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Float64("passRatePercent", passRate),
		logger.Float64("requestsPerSecond", rps),
		logger.Any("perRoute", stats.PerRoute))

	for i, f := range stats.Failures {
		if i == maxReportedFailures {
			logger.Get().Warn(ctx, "more failures omitted", logger.Int("omitted", len(stats.Failures)-i))
			break
		}
		logger.Get().Warn(ctx, "failure", logger.String("detail", f))
	}
}

// maxReportedFailures caps how many failure details are logged.
const maxReportedFailures = 10
