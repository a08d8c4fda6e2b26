package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/demo-microservice/internal/smoketest"
)

// Default configuration constants.
const (
	defaultRequests    = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		requests = flag.Int("requests", defaultRequests, "Number of probes to send, spread over all routes")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Also write logs to this file")
		verbose  = flag.Bool("verbose", false, "Log every failing probe")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return 0
	}

	closeLog, err := smoketest.SetupLogging(*logFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	config := &smoketest.Config{
		BaseURL:  *baseURL,
		Requests: *requests,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if _, err := smoketest.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
