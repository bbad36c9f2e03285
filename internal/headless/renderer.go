// Package headless renders challenge-protected pages in a real browser.
// The fast colly path handles everything else; the renderer only sees
// URLs the detector flagged.
package headless

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/fetch"
	"github.com/openlawindex/harvester/internal/metrics"
)

// Config controls renderer behavior.
type Config struct {
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	// MinDelay/MaxDelay bound the random pause before each render. The
	// jitter keeps navigation cadence from looking mechanical to the
	// anti-bot layer in front of the case-law listings.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Renderer fetches pages through headless Chrome via chromedp.
type Renderer struct {
	cfg         Config
	slots       chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// New creates a Renderer. Close must be called when done.
func New(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	var slots chan struct{}
	if cfg.MaxParallel > 0 {
		slots = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		slots:       slots,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close cancels the allocator context.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Render navigates to the URL and returns the fully rendered DOM.
func (r *Renderer) Render(ctx context.Context, url string) (fetch.Response, error) {
	if err := r.acquire(ctx); err != nil {
		return fetch.Response{}, err
	}
	defer r.release()

	if err := r.jitterSleep(ctx); err != nil {
		return fetch.Response{}, err
	}

	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.cfg.NavigationTimeout)
	defer cancel()

	meta := newResponseMeta()
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	start := time.Now()
	html, finalURL, err := r.navigate(taskCtx, url)
	if err != nil {
		return fetch.Response{}, err
	}

	status, contentType, responseURL := meta.snapshotWithFallbacks(url, finalURL)
	metrics.ObserveHeadlessPromotion(url)
	r.logger.Debug("headless render complete",
		zap.String("url", url), zap.Int("status", status))

	return fetch.Response{
		URL:         responseURL,
		StatusCode:  status,
		ContentType: contentType,
		Body:        []byte(html),
		Duration:    time.Since(start),
	}, nil
}

func (r *Renderer) navigate(ctx context.Context, url string) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		r.networkSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (r *Renderer) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (r *Renderer) jitterSleep(ctx context.Context) error {
	if r.cfg.MaxDelay <= 0 {
		return nil
	}
	delay := r.cfg.MinDelay
	if span := r.cfg.MaxDelay - r.cfg.MinDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("render delay canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (r *Renderer) acquire(ctx context.Context) error {
	if r.slots == nil {
		return nil
	}
	select {
	case r.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (r *Renderer) release() {
	if r.slots == nil {
		return
	}
	select {
	case <-r.slots:
	default:
	}
}

type responseMeta struct {
	mu          sync.Mutex
	status      int
	contentType string
	url         string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

// captureEvent runs on chromedp's event goroutine.
func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = int(resp.Response.Status)
	m.url = resp.Response.URL
	if ct, ok := resp.Response.Headers["Content-Type"].(string); ok {
		m.contentType = ct
	}
}

func (m *responseMeta) snapshotWithFallbacks(requestURL, finalURL string) (int, string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := m.url
	switch {
	case url != "":
	case finalURL != "":
		url = finalURL
	default:
		url = requestURL
	}
	status := m.status
	if status == 0 {
		status = 200
	}
	return status, m.contentType, url
}
