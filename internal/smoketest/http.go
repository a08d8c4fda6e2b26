package smoketest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/demo-microservice/pkg/logger"
)

// workerChannelMultiplier sizes the probe channel relative to the worker count.
const workerChannelMultiplier = 2

// progressInterval is how often running totals are logged.
const progressInterval = time.Second

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request, tagging it with requestID when set.
func (c *HTTPClient) Get(ctx context.Context, url, requestID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// runProbes sends probes concurrently using a worker pool and fills stats.
func runProbes(ctx context.Context, config *Config, probes []Probe, stats *Stats) {
	client := newHTTPClient(config.Timeout)
	log := logger.Get()

	var (
		sent   int64
		passed int64
		failed int64

		mu         sync.Mutex
		lastReport time.Time
	)

	probeChan := make(chan Probe, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for p := range probeChan {
				if ctx.Err() != nil {
					continue
				}
				err := sendProbe(ctx, client, config.BaseURL, p)

				atomic.AddInt64(&sent, 1)
				mu.Lock()
				stats.PerRoute[p.Route]++
				if err != nil {
					stats.Failures = append(stats.Failures, err.Error())
				}
				report := time.Since(lastReport) >= progressInterval
				if report {
					lastReport = time.Now()
				}
				mu.Unlock()

				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "probe failed",
							logger.String("path", p.Path),
							logger.String("request_id", p.RequestID),
							logger.Error(err))
					}
				} else {
					atomic.AddInt64(&passed, 1)
				}

				if report {
					log.Info(ctx, "progress",
						logger.Int("sent", int(atomic.LoadInt64(&sent))),
						logger.Int("total", len(probes)),
						logger.Int("passed", int(atomic.LoadInt64(&passed))),
						logger.Int("failed", int(atomic.LoadInt64(&failed))))
				}
			}
		}()
	}

	go func() {
		defer close(probeChan)
		for _, p := range probes {
			select {
			case <-ctx.Done():
				return
			case probeChan <- p:
			}
		}
	}()

	wg.Wait()

	stats.Sent = int(atomic.LoadInt64(&sent))
	stats.Passed = int(atomic.LoadInt64(&passed))
	stats.Failed = int(atomic.LoadInt64(&failed))
}

// sendProbe performs one probe and verifies its response.
func sendProbe(ctx context.Context, client *HTTPClient, baseURL string, p Probe) error {
	resp, err := client.Get(ctx, baseURL+p.Path, p.RequestID)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Path, err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("%s: failed to read body: %w", p.Path, err)
	}
	return verifyResponse(p, resp.StatusCode, resp.Header, body)
}
