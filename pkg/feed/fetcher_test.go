package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetcher_Fetch(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, `{"ac": [{"alt_baro": 1500, "gs": 180, "flight": "DLH123 "}]}`)

	f := feed.NewFetcher(server.URL, "3c6444", 0).WithClock(func() time.Time { return fixedNow })
	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3c6444", snap.ICAO)
	assert.Equal(t, 1500.0, snap.Altitude)
	assert.Equal(t, 180.0, snap.GroundSpeed)
	assert.Equal(t, "DLH123", snap.Registration)
	assert.Equal(t, "DLH123", snap.FlightID)
	assert.Equal(t, fixedNow, snap.ObservedAt)
}

func TestFetcher_UserAgent(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ac": [{"gs": 0}]}`))
	}))
	defer server.Close()

	_, err := feed.NewFetcher(server.URL, "3c6444", time.Second).WithUserAgent("airwatch/test").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "airwatch/test", ua)
}

func TestFetcher_Fetch_NoAircraft(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, `{"ac": []}`)

	_, err := feed.NewFetcher(server.URL, "3c6444", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, feed.ErrNoAircraft)
}

func TestFetcher_Fetch_ServerError(t *testing.T) {
	server := newFeedServer(t, http.StatusServiceUnavailable, `{"error": "busy"}`)

	_, err := feed.NewFetcher(server.URL, "3c6444", time.Second).Fetch(context.Background())
	require.Error(t, err)

	var statusErr *feed.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetcher_Fetch_Malformed(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, `<html>rate limited</html>`)

	_, err := feed.NewFetcher(server.URL, "3c6444", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, feed.ErrMalformed)
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := feed.NewFetcher(server.URL, "3c6444", 50*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch feed")
}

func TestFetcher_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := feed.NewFetcher(url, "3c6444", time.Second).Fetch(context.Background())
	assert.Error(t, err)
}
