// Package sources provides HTTP clients for the upstream biomedical
// databases the harvester ingests from. Every client is rate limited,
// context aware, and returns the raw payload for the parser registry.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/biodata-harvester/internal/domain"
)

// Payload is one raw upstream response ready for parsing.
type Payload struct {
	Source      domain.SourceName `json:"source"`
	Data        []byte            `json:"data"`
	URL         string            `json:"url"`
	Version     string            `json:"version,omitempty"`
	RetrievedAt time.Time         `json:"retrieved_at"`
}

// Fetcher retrieves one source's payload. Parameters are source specific;
// the common one is gene_symbol.
type Fetcher interface {
	Source() domain.SourceName
	Fetch(ctx context.Context, params map[string]string) (*Payload, error)
}

func newLimiter(requestsPerSecond int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doGet performs one rate-limited GET with a bounded retry on transient
// failures. Retries apply to network errors and 5xx responses only.
func doGet(ctx context.Context, client *http.Client, limiter *rate.Limiter, retries int, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request: %w", err)
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = fmt.Errorf("request returned status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("request returned status %d", resp.StatusCode)
		}
		return resp, nil
	}
	return nil, lastErr
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
