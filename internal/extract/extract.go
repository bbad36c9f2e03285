// Package extract fetches pages and pulls structural metadata out of the
// HTML: title, description, canonical link, heading, a bounded text
// excerpt, and same-site links.
package extract

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/fetch"
)

// ExcerptLimit bounds the text excerpt; it feeds the content hash, not a
// reader, so a prefix is enough.
const ExcerptLimit = 3000

// getter is the slice of the fetcher the extractor needs.
type getter interface {
	Get(ctx context.Context, url string) (fetch.Response, error)
}

// renderer re-fetches a page through a real browser.
type renderer interface {
	Render(ctx context.Context, url string) (fetch.Response, error)
}

// promoteDetector decides when a response needs the renderer.
type promoteDetector interface {
	ShouldPromote(resp fetch.Response) bool
}

// Extractor parses fetched pages with goquery, optionally falling back to
// a headless render when the fast path returns a challenge page.
type Extractor struct {
	fetch    getter
	render   renderer
	detector promoteDetector
	logger   *zap.Logger
}

// New builds an Extractor without a headless fallback.
func New(fetch getter, logger *zap.Logger) *Extractor {
	return &Extractor{fetch: fetch, logger: logger}
}

// WithHeadless enables promotion to a browser render.
func (e *Extractor) WithHeadless(render renderer, detector promoteDetector) *Extractor {
	e.render = render
	e.detector = detector
	return e
}

// Extract retrieves and parses one page. Any failure, transport or parse,
// yields nil; the caller records the URL with whatever it derived from
// the URL alone. No retries beyond the single headless promotion.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *corpus.PageMeta {
	resp, err := e.fetch.Get(ctx, rawURL)
	if err != nil {
		e.logger.Warn("page fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	resp = e.maybePromote(ctx, rawURL, resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Debug("page fetch non-2xx",
			zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return nil
	}
	return Parse(resp.Body, rawURL)
}

// Fetch returns the raw (possibly headless-promoted) response for
// callers that need the body itself, like the case-listing walker.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (fetch.Response, error) {
	resp, err := e.fetch.Get(ctx, rawURL)
	if err != nil {
		return fetch.Response{}, err
	}
	return e.maybePromote(ctx, rawURL, resp), nil
}

func (e *Extractor) maybePromote(ctx context.Context, rawURL string, resp fetch.Response) fetch.Response {
	if e.render == nil || e.detector == nil || !e.detector.ShouldPromote(resp) {
		return resp
	}
	rendered, err := e.render.Render(ctx, rawURL)
	if err != nil {
		e.logger.Warn("headless promotion failed", zap.String("url", rawURL), zap.Error(err))
		return resp
	}
	e.logger.Info("headless promotion applied", zap.String("url", rawURL))
	return rendered
}

// Parse extracts metadata from HTML bytes. Exposed separately so the
// headless renderer's output runs through the same parsing.
func Parse(body []byte, rawURL string) *corpus.PageMeta {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	meta := &corpus.PageMeta{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Heading: strings.TrimSpace(doc.Find("h1").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		meta.Canonical = strings.TrimSpace(canonical)
	}
	meta.Excerpt = excerpt(doc)
	meta.Links = sameSiteLinks(doc, rawURL)
	return meta
}

// excerpt collapses the body text to single spaces and truncates.
func excerpt(doc *goquery.Document) string {
	text := doc.Find("body").Text()
	fields := strings.Fields(text)
	joined := strings.Join(fields, " ")
	if len(joined) > ExcerptLimit {
		joined = joined[:ExcerptLimit]
	}
	return joined
}

// Anchor is one same-site link with its anchor text.
type Anchor struct {
	URL  string
	Text string
}

// ParseAnchors returns the same-site anchors of a page with their text,
// deduplicated by URL in document order. Case-listing pages carry the
// case styling in the anchor text, so the text matters as much as the
// destination here.
func ParseAnchors(body []byte, rawURL string) []Anchor {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var anchors []Anchor
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		resolved, ok := resolveSameSite(base, s)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		anchors = append(anchors, Anchor{
			URL:  resolved,
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return anchors
}

// sameSiteLinks resolves every anchor against the page URL and keeps the
// ones on the same host, deduplicated in document order.
func sameSiteLinks(doc *goquery.Document, rawURL string) []string {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		resolved, ok := resolveSameSite(base, s)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})
	return links
}

// resolveSameSite resolves one anchor href against the base URL, dropping
// fragments, off-site targets, and non-navigational schemes.
func resolveSameSite(base *url.URL, s *goquery.Selection) (string, bool) {
	href, _ := s.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}
	u, err := base.Parse(href)
	if err != nil || u.Hostname() != base.Hostname() {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}
