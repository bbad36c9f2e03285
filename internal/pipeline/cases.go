package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/classify"
	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/enumerate"
	"github.com/openlawindex/harvester/internal/extract"
	"github.com/openlawindex/harvester/internal/fetch"
	"github.com/openlawindex/harvester/internal/jurisdiction"
	"github.com/openlawindex/harvester/internal/metrics"
)

// fetcher is the case harvester's view of page retrieval. It needs the
// raw body, not parsed metadata, because the case styling lives in the
// listing's anchor text.
type fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Response, error)
}

// caseSink persists case records.
type caseSink interface {
	AppendCase(rec corpus.CaseRecord) error
}

// CaseOptions narrow one case harvest. Zero values mean no filter.
type CaseOptions struct {
	// Court restricts listings to one court slug, e.g. "supreme-court".
	Court string
	// FromYear/ToYear clamp the listing years inside the jurisdiction's
	// own range.
	FromYear int
	ToYear   int
}

// matches reports whether a listing URL survives the filters.
func (o CaseOptions) matches(listingURL string) bool {
	if o.Court == "" && o.FromYear == 0 && o.ToYear == 0 {
		return true
	}
	parsed := classify.ParseURL(listingURL)
	if o.Court != "" && parsed.Court != o.Court {
		return false
	}
	if o.FromYear != 0 && parsed.Year < o.FromYear {
		return false
	}
	if o.ToYear != 0 && parsed.Year > o.ToYear {
		return false
	}
	return true
}

// CaseStats aggregates one case harvest.
type CaseStats struct {
	Jurisdiction   string `json:"jurisdiction"`
	Listings       int    `json:"listings"`
	ListingsFailed int    `json:"listings_failed"`
	Candidates     int    `json:"candidates"`
	Stored         int    `json:"stored"`
}

// CaseHarvester walks a jurisdiction's court listing pages and records
// the opinions whose styling signals child-welfare subject matter,
// cross-referenced against constitutional provision categories.
type CaseHarvester struct {
	enum       *enumerate.Enumerator
	fetch      fetcher
	engine     *classify.Engine
	crossref   *classify.CrossReferencer
	normalizer *classify.Normalizer
	sink       caseSink
	logger     *zap.Logger
	now        func() time.Time
}

// NewCaseHarvester wires a CaseHarvester.
func NewCaseHarvester(
	enum *enumerate.Enumerator,
	f fetcher,
	engine *classify.Engine,
	crossref *classify.CrossReferencer,
	normalizer *classify.Normalizer,
	sink caseSink,
	logger *zap.Logger,
) *CaseHarvester {
	return &CaseHarvester{
		enum:       enum,
		fetch:      f,
		engine:     engine,
		crossref:   crossref,
		normalizer: normalizer,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// Harvest walks the state court listings for the jurisdiction, narrowed
// by opts. Only opinions with a relevance match are persisted; a listing
// that fails to fetch is counted and skipped, never fatal.
func (h *CaseHarvester) Harvest(
	ctx context.Context,
	j jurisdiction.Jurisdiction,
	opts CaseOptions,
) (CaseStats, error) {
	stats := CaseStats{Jurisdiction: j.Slug}
	seen := make(map[string]struct{})

	for _, listing := range h.enum.StateCourts(j) {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("case harvest canceled: %w", err)
		}
		if !opts.matches(listing.URL) {
			continue
		}
		stats.Listings++

		resp, err := h.fetch.Fetch(ctx, listing.URL)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Years before a court existed come back 404; that is the
			// listing's way of saying "nothing here".
			stats.ListingsFailed++
			h.logger.Debug("case listing unavailable",
				zap.String("url", listing.URL),
				zap.Int("status", resp.StatusCode),
				zap.Error(err),
			)
			continue
		}

		for _, anchor := range extract.ParseAnchors(resp.Body, listing.URL) {
			if _, dup := seen[anchor.URL]; dup {
				continue
			}
			parsed := classify.ParseURL(anchor.URL)
			if parsed.Type != corpus.ResourceCaseLaw || parsed.CaseID == "" {
				continue
			}
			seen[anchor.URL] = struct{}{}
			stats.Candidates++

			if err := h.processCase(j, anchor, &stats); err != nil {
				return stats, err
			}
		}
	}

	h.logger.Info("case harvest finished",
		zap.String("jurisdiction", j.Slug),
		zap.Int("listings", stats.Listings),
		zap.Int("candidates", stats.Candidates),
		zap.Int("stored", stats.Stored),
	)
	return stats, nil
}

func (h *CaseHarvester) processCase(
	j jurisdiction.Jurisdiction,
	anchor extract.Anchor,
	stats *CaseStats,
) error {
	match := h.engine.Score(anchor.Text)
	if !match.Relevant() {
		return nil
	}

	rec := h.normalizer.NormalizeCase(corpus.CandidateURL{
		URL:          anchor.URL,
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceCaseLaw,
	}, j, &corpus.PageMeta{Title: anchor.Text}, h.now())
	rec.Provisions = h.crossref.Link(anchor.Text)

	if err := h.sink.AppendCase(rec); err != nil {
		return fmt.Errorf("persist case %s: %w", rec.CaseID, err)
	}
	metrics.ObserveRecord(string(rec.ResourceType), rec.Priority)
	stats.Stored++

	h.logger.Debug("case recorded",
		zap.String("case_id", rec.CaseID),
		zap.String("court", rec.CourtName),
		zap.Float64("confidence", rec.Confidence),
		zap.Int("provisions", len(rec.Provisions)),
	)
	return nil
}
