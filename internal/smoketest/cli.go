package smoketest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/demo-microservice/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger to write to stdout and, when logFile
// is not empty, to that file as well.
// The returned func closes the file.
func SetupLogging(logFile string) (func(), error) {
	if logFile == "" {
		if err := logger.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return func() {}, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return func() { _ = file.Close() }, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Demo Microservice Smoke Tool
============================

Sends concurrent requests to every route of a running demo-microservice and
verifies each response body.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of probes to send, spread over all routes (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Also write logs to this file
  -verbose
        Log every failing probe
  -help
        Show this help message

Examples:
  # Probe a local instance
  go run ./cmd/smoke

  # Heavier run against another host
  go run ./cmd/smoke -requests 20000 -workers 32 -url http://demo:8080
`)
}
