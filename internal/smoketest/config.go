// Package smoketest drives a running instance of the service with concurrent
// requests and verifies every payload it gets back.
package smoketest

import (
	"errors"
	"fmt"
	"time"
)

// Run errors.
var (
	ErrProbesFailed  = errors.New("smoke probes failed")
	ErrInvalidConfig = errors.New("invalid smoke config")
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Requests int           // Number of probes to send
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every failing probe
}

// Validate rejects configs that cannot produce a meaningful run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base URL must not be empty", ErrInvalidConfig)
	case c.Requests <= 0:
		return fmt.Errorf("%w: requests must be positive, got %d", ErrInvalidConfig, c.Requests)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Sent      int
	Passed    int
	Failed    int
	PerRoute  map[string]int
	Failures  []string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
