// Package pipeline orchestrates harvesting runs: enumerate, validate,
// extract, classify, persist, and watch for drift, one jurisdiction at a
// time or batched across jurisdictions with a bounded pool.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/classify"
	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/enumerate"
	"github.com/openlawindex/harvester/internal/jurisdiction"
	"github.com/openlawindex/harvester/internal/metrics"
	"github.com/openlawindex/harvester/internal/store"
)

// validator is the pipeline's view of the existence check.
type validator interface {
	Validate(ctx context.Context, c corpus.CandidateURL) bool
}

// extractor is the pipeline's view of page metadata extraction.
type extractor interface {
	Extract(ctx context.Context, url string) *corpus.PageMeta
}

// Runner executes harvest runs.
type Runner struct {
	enum       *enumerate.Enumerator
	validate   validator
	extract    extractor
	normalizer *classify.Normalizer
	sink       *store.Store
	drift      *store.DriftMap
	logger     *zap.Logger
	now        func() time.Time
}

// New wires a Runner.
func New(
	enum *enumerate.Enumerator,
	validate validator,
	extract extractor,
	normalizer *classify.Normalizer,
	sink *store.Store,
	drift *store.DriftMap,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		enum:       enum,
		validate:   validate,
		extract:    extract,
		normalizer: normalizer,
		sink:       sink,
		drift:      drift,
		logger:     logger,
		now:        time.Now,
	}
}

// Options tune one run.
type Options struct {
	// DryRun enumerates and classifies without touching the network or
	// the store.
	DryRun bool
}

// RunJurisdiction harvests one jurisdiction end to end.
func (r *Runner) RunJurisdiction(
	ctx context.Context,
	j jurisdiction.Jurisdiction,
	opts Options,
) (corpus.RunSummary, error) {
	metrics.IncActiveRuns()
	defer metrics.DecActiveRuns()

	summary := corpus.RunSummary{
		RunID:        uuid.NewString(),
		Jurisdiction: j.Slug,
		StartedAt:    r.now().UTC(),
		ByType:       make(map[string]int),
		ByPriority:   make(map[string]int),
		DryRun:       opts.DryRun,
	}
	r.logger.Info("run started",
		zap.String("run_id", summary.RunID),
		zap.String("jurisdiction", j.Slug),
		zap.Bool("dry_run", opts.DryRun),
	)

	var runErr error
	r.enum.Walk(j, func(c corpus.CandidateURL) bool {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run canceled: %w", err)
			return false
		}
		r.processCandidate(ctx, j, c, opts, &summary)
		return true
	})

	summary.FinishedAt = r.now().UTC()
	if runErr != nil {
		metrics.ObserveRun("canceled")
		return summary, runErr
	}

	if !opts.DryRun {
		if err := r.sink.WriteSummary(summary); err != nil {
			metrics.ObserveRun("failed")
			return summary, err
		}
	}
	metrics.ObserveRun("succeeded")
	r.logger.Info("run finished",
		zap.String("run_id", summary.RunID),
		zap.String("jurisdiction", j.Slug),
		zap.Int("total", summary.Total),
		zap.Int("relevant", summary.Relevant),
		zap.Int("drifted", summary.Drifted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (r *Runner) processCandidate(
	ctx context.Context,
	j jurisdiction.Jurisdiction,
	c corpus.CandidateURL,
	opts Options,
	summary *corpus.RunSummary,
) {
	var meta *corpus.PageMeta
	if !opts.DryRun {
		if !r.validate.Validate(ctx, c) {
			// Absent titles and unpublished years are expected; skip
			// quietly.
			r.logger.Debug("candidate absent", zap.String("url", c.URL))
			return
		}
		meta = r.extract.Extract(ctx, c.URL)
		if meta == nil {
			// The page exists but could not be fetched or parsed; the
			// record still goes in with URL-derived fields only.
			summary.Failed++
		}
	}

	rec := r.normalizer.Normalize(c, j, meta, r.now())
	r.noteDrift(rec, summary)

	if !opts.DryRun {
		if err := r.sink.Append(rec); err != nil {
			r.logger.Error("record append failed",
				zap.String("url", rec.URL), zap.Error(err))
			summary.Failed++
			return
		}
		metrics.ObserveRecord(string(rec.ResourceType), rec.Priority)
	}

	summary.Total++
	if rec.Relevant {
		summary.Relevant++
	}
	summary.ByType[string(rec.ResourceType)]++
	summary.ByPriority[strconv.Itoa(rec.Priority)]++

	if meta != nil && c.Family == corpus.ResourceLocality {
		r.discoverPlaces(ctx, j, c, meta.Links, opts, summary)
	}
}

// placeDiscoveryCap bounds how many place pages one locality index may
// seed. The locality family is the only open-ended one; every other
// family enumerates from fixed ranges.
const placeDiscoveryCap = 100

// discoverPlaces walks the locality index's extracted links and runs the
// place pages for the same state through the normal candidate path. Place
// pages never seed further discovery.
func (r *Runner) discoverPlaces(
	ctx context.Context,
	j jurisdiction.Jurisdiction,
	index corpus.CandidateURL,
	links []string,
	opts Options,
	summary *corpus.RunSummary,
) {
	parsedIndex := classify.ParseURL(index.URL)
	if parsedIndex.Type != corpus.ResourceLocality || parsedIndex.Subtype != "index" {
		return
	}

	found := 0
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			return
		}
		if found >= placeDiscoveryCap {
			r.logger.Warn("locality discovery capped",
				zap.String("index", index.URL),
				zap.Int("cap", placeDiscoveryCap),
			)
			return
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		parsed := classify.ParseURL(link)
		if parsed.Type != corpus.ResourceLocality || parsed.Subtype != "place" ||
			parsed.State != parsedIndex.State {
			continue
		}
		found++
		r.processCandidate(ctx, j, corpus.CandidateURL{
			URL:          link,
			Jurisdiction: index.Jurisdiction,
			Family:       corpus.ResourceLocality,
			ResourceID:   placeSlug(link),
		}, opts, summary)
	}
}

// placeSlug is the trailing path segment of a place URL.
func placeSlug(link string) string {
	trimmed := strings.TrimRight(link, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

func (r *Runner) noteDrift(rec corpus.NormalizedRecord, summary *corpus.RunSummary) {
	if rec.ContentHash == "" || r.drift == nil {
		return
	}
	old, err := r.drift.CheckDrift(rec.URL, rec.ContentHash)
	if err != nil {
		r.logger.Error("drift check failed", zap.String("url", rec.URL), zap.Error(err))
		return
	}
	if old == "" {
		return
	}
	summary.Drifted++
	metrics.ObserveDrift(rec.JurisdictionID)
	r.logger.Warn("content drift detected",
		zap.String("url", rec.URL),
		zap.String("old_hash", old),
		zap.String("new_hash", rec.ContentHash),
		zap.Time("detected_at", rec.RetrievedAt),
	)
}

// RecheckDrift refetches every URL previously recorded for the
// jurisdiction and reports the ones whose content hash moved. The hash
// map is updated as it goes, so a second immediate recheck is quiet.
func (r *Runner) RecheckDrift(
	ctx context.Context,
	j jurisdiction.Jurisdiction,
) ([]corpus.DriftReport, error) {
	records, err := r.sink.ReadRecords(j.Slug)
	if err != nil {
		return nil, fmt.Errorf("load recorded urls: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	var reports []corpus.DriftReport
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("recheck canceled: %w", err)
		}
		if _, dup := seen[rec.URL]; dup || rec.ContentHash == "" {
			continue
		}
		seen[rec.URL] = struct{}{}

		meta := r.extract.Extract(ctx, rec.URL)
		if meta == nil {
			r.logger.Debug("recheck fetch failed", zap.String("url", rec.URL))
			continue
		}
		fresh := r.normalizer.Normalize(corpus.CandidateURL{
			URL:          rec.URL,
			Jurisdiction: j.Slug,
		}, j, meta, r.now())

		old, err := r.drift.CheckDrift(rec.URL, fresh.ContentHash)
		if err != nil {
			return reports, err
		}
		if old == "" {
			continue
		}
		report := corpus.DriftReport{
			URL:        rec.URL,
			OldHash:    old,
			NewHash:    fresh.ContentHash,
			DetectedAt: r.now().UTC(),
		}
		reports = append(reports, report)
		metrics.ObserveDrift(j.Slug)
		r.logger.Warn("content drift detected",
			zap.String("url", report.URL),
			zap.String("old_hash", report.OldHash),
			zap.String("new_hash", report.NewHash),
		)
	}
	return reports, nil
}

// BatchResult pairs one jurisdiction with its outcome.
type BatchResult struct {
	Slug    string
	Summary corpus.RunSummary
	Err     error
}

// RunBatch harvests several jurisdictions with at most concurrency runs
// in flight. A failing jurisdiction never stops the others; its error
// rides along in the results.
func (r *Runner) RunBatch(
	ctx context.Context,
	jurisdictions []jurisdiction.Jurisdiction,
	concurrency int,
	opts Options,
) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]BatchResult, len(jurisdictions))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, j := range jurisdictions {
		wg.Add(1)
		go func(i int, j jurisdiction.Jurisdiction) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, err := r.RunJurisdiction(ctx, j, opts)
			if err != nil {
				r.logger.Error("jurisdiction run failed",
					zap.String("jurisdiction", j.Slug), zap.Error(err))
			}
			results[i] = BatchResult{Slug: j.Slug, Summary: summary, Err: err}
		}(i, j)
	}
	wg.Wait()
	return results
}
