package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 20 * time.Second

const maxBodySize = 10 * 1024 * 1024

// StatusError is returned when the feed answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned status %d", e.StatusCode)
}

// Fetcher polls a feed endpoint scoped to one aircraft.
type Fetcher struct {
	url       string
	icao      string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewFetcher creates a fetcher. A zero timeout uses DefaultTimeout.
func NewFetcher(url, icao string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		url:       url,
		icao:      icao,
		userAgent: "airwatch/1.0",
		client: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// WithClock replaces the clock used for the fallback flight identifier.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// WithUserAgent sets the User-Agent header sent to the feed.
func (f *Fetcher) WithUserAgent(ua string) *Fetcher {
	f.userAgent = ua
	return f
}

// Fetch performs one GET and derives a snapshot from the first aircraft.
// It returns ErrNoAircraft when the feed lists nothing.
func (f *Fetcher) Fetch(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	record, err := Extract(body)
	if err != nil {
		return nil, err
	}

	return record.Snapshot(f.icao, f.now().UTC()), nil
}
