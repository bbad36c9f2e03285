// Package fetch performs polite HTTP retrieval: colly collectors over a
// shared transport, robots.txt enforcement, a per-host rate floor, and a
// 403 threshold that blocks hostile hosts for the rest of the run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/metrics"
	"github.com/openlawindex/harvester/internal/policy/ratelimit"
)

// ErrHostBlocked marks fetches refused because the host crossed the 403
// threshold earlier in the run.
var ErrHostBlocked = errors.New("host blocked for this run")

// ErrRobotsDisallowed marks fetches refused by the host's robots.txt.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Response is the outcome of one successful HTTP exchange.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Config controls fetcher behavior.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
	// BlockAfter403s is how many 403s a host may return before the rest
	// of the run skips it. Zero disables blocking.
	BlockAfter403s int
}

// Fetcher issues GET and HEAD requests through colly.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	limiter       *ratelimit.Limiter
	robots        *RobotsGate
	blocker       *HostBlocker
	logger        *zap.Logger
}

// New builds a Fetcher. The limiter is mandatory; the politeness floor is
// not optional equipment.
func New(cfg Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	// Drift rechecks revisit URLs within one process.
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())

	var gate *RobotsGate
	if cfg.RespectRobots {
		gate = NewRobotsGate(cfg.UserAgent, cfg.Timeout, logger)
	}

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		limiter:       limiter,
		robots:        gate,
		blocker:       NewHostBlocker(cfg.BlockAfter403s),
		logger:        logger,
	}
}

// Get retrieves a page body.
func (f *Fetcher) Get(ctx context.Context, url string) (Response, error) {
	return f.do(ctx, url, false)
}

// Head probes a URL without downloading the body.
func (f *Fetcher) Head(ctx context.Context, url string) (Response, error) {
	return f.do(ctx, url, true)
}

func (f *Fetcher) do(ctx context.Context, url string, head bool) (Response, error) {
	host := metrics.SanitizeHost(url)
	if f.blocker.Blocked(host) {
		return Response{}, fmt.Errorf("%s: %w", host, ErrHostBlocked)
	}
	if f.robots != nil && !f.robots.Allowed(ctx, url) {
		return Response{}, fmt.Errorf("%s: %w", url, ErrRobotsDisallowed)
	}
	if err := f.limiter.Wait(ctx, url); err != nil {
		return Response{}, err
	}

	var (
		result   Response
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, url, head, &result, &fetchErr); err != nil {
		metrics.ObservePage(url, "error")
		return Response{}, err
	}

	if result.StatusCode == http.StatusForbidden {
		f.blocker.Note403(host)
	}
	metrics.ObservePage(url, fmt.Sprintf("%d", result.StatusCode))
	return result, nil
}

func (f *Fetcher) buildCollector(start time.Time, result *Response, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	// The gate handles robots; colly's own enforcement would fetch
	// robots.txt outside the rate floor.
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		*result = Response{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
			Duration:    time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		// Non-2xx responses surface here; keep the status so validators
		// can distinguish 404 from transport failure.
		if r != nil && r.StatusCode != 0 {
			*result = Response{
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Duration:   time.Since(start),
			}
			if r.Headers != nil {
				result.ContentType = r.Headers.Get("Content-Type")
			}
		}
		*fetchErr = err
	})
	return collector
}

func (f *Fetcher) runCollector(
	ctx context.Context,
	collector *colly.Collector,
	url string,
	head bool,
	result *Response,
	fetchErr *error,
) error {
	done := make(chan error, 1)
	go func() {
		if head {
			done <- collector.Head(url)
		} else {
			done <- collector.Visit(url)
		}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		// A response that carries a status code is usable even when colly
		// reports the non-2xx as an error; only pure transport failures
		// propagate.
		if result.StatusCode != 0 {
			return nil
		}
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("visit %s: %w", url, *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
