package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/metrics"
	"github.com/openlawindex/harvester/internal/policy/ratelimit"
)

func newTestFetcher(cfg Config) *Fetcher {
	metrics.Init()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return New(cfg, ratelimit.New(time.Millisecond), zap.NewNop())
}

func TestGetReturnsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>Demo Code</title></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(Config{UserAgent: "test-agent"})
	resp, err := f.Get(context.Background(), srv.URL+"/codes/demo/")

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.ContentType, "text/html")
	require.Contains(t, string(resp.Body), "Demo Code")
}

func TestHeadDoesNotNeedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(Config{})
	resp, err := f.Head(context.Background(), srv.URL+"/constitution/demo/")

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.ContentType, "text/html")
}

func TestGetSurfacesNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(Config{})
	resp, err := f.Get(context.Background(), srv.URL+"/missing/")

	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetTransportFailureIsError(t *testing.T) {
	f := newTestFetcher(Config{Timeout: time.Second})
	// Reserved TEST-NET address, nothing listens there.
	_, err := f.Get(context.Background(), "http://192.0.2.1:9/")
	require.Error(t, err)
}

func TestRepeated403sBlockHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher(Config{BlockAfter403s: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := f.Get(ctx, srv.URL+"/x")
		require.NoError(t, err)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	_, err := f.Get(ctx, srv.URL+"/y")
	require.ErrorIs(t, err, ErrHostBlocked)
}

func TestRobotsGateBlocksDisallowedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestFetcher(Config{RespectRobots: true, UserAgent: "test-agent"})
	ctx := context.Background()

	_, err := f.Get(ctx, srv.URL+"/private/page")
	require.ErrorIs(t, err, ErrRobotsDisallowed)

	resp, err := f.Get(ctx, srv.URL+"/public/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRobotsGateAllowsWhenRobotsUnreachable(t *testing.T) {
	gate := NewRobotsGate("test-agent", 500*time.Millisecond, zap.NewNop())
	require.True(t, gate.Allowed(context.Background(), "http://192.0.2.1:9/anything"))
}

func TestHostBlockerDisabledAtZeroThreshold(t *testing.T) {
	b := NewHostBlocker(0)
	for i := 0; i < 100; i++ {
		b.Note403("h")
	}
	require.False(t, b.Blocked("h"))
}

func TestHostBlockerThreshold(t *testing.T) {
	b := NewHostBlocker(3)
	b.Note403("h")
	b.Note403("h")
	require.False(t, b.Blocked("h"))
	b.Note403("h")
	require.True(t, b.Blocked("h"))
	require.False(t, b.Blocked("other"))
}

func TestGetCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx, srv.URL+"/slow")
	require.Error(t, err)
}
