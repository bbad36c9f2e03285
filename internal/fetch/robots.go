package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate caches one robots.txt decision group per host. Hosts whose
// robots.txt cannot be fetched or parsed default to allow-all: the
// sources here are public indexes and an unreachable robots.txt is far
// more often an outage than a prohibition.
type RobotsGate struct {
	userAgent string
	client    *http.Client
	logger    *zap.Logger

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

// NewRobotsGate builds a gate for the given user agent.
func NewRobotsGate(userAgent string, timeout time.Duration, logger *zap.Logger) *RobotsGate {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RobotsGate{
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		hosts:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the gate permits fetching the URL.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	group := g.group(ctx, u)
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (g *RobotsGate) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	g.mu.Lock()
	group, cached := g.hosts[u.Host]
	g.mu.Unlock()
	if cached {
		return group
	}

	group = g.fetchGroup(ctx, u)

	g.mu.Lock()
	g.hosts[u.Host] = group
	g.mu.Unlock()
	return group
}

// fetchGroup retrieves and parses robots.txt. A nil group means allow-all.
func (g *RobotsGate) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("robots.txt fetch failed, allowing host",
				zap.String("host", u.Host), zap.Error(err))
		}
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("robots.txt parse failed, allowing host",
				zap.String("host", u.Host), zap.Error(err))
		}
		return nil
	}
	return data.FindGroup(g.userAgent)
}
