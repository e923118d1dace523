package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tabel/internal/core"
	ports "tabel/internal/records"
)

// ErrTimeout is returned when the upstream endpoint does not answer within
// the configured window. Callers show a dedicated message for it, distinct
// from other fetch failures.
var ErrTimeout = errors.New("data request timed out")

// DefaultTimeout bounds a single fetch when the caller does not set one.
const DefaultTimeout = 60 * time.Second

// Client loads attendance records from an upstream JSON endpoint.
type Client struct {
	http    *http.Client
	url     string
	timeout time.Duration
}

var _ ports.Source = (*Client)(nil)

// New creates a client for the given endpoint URL. A non-positive timeout
// falls back to DefaultTimeout.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{},
		url:     url,
		timeout: timeout,
	}
}

// Load fetches and decodes the full record set. The request is aborted after
// the client's timeout; that case surfaces as ErrTimeout.
func (c *Client) Load(ctx context.Context) ([]core.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: unexpected status %d", c.url, resp.StatusCode)
	}

	var recs []core.AttendanceRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	slog.InfoContext(ctx, "Loaded attendance records",
		"url", c.url,
		"count", len(recs),
		"elapsed", time.Since(start))
	return recs, nil
}
