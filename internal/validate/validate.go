// Package validate probes enumerated URLs for existence before the
// pipeline spends a full fetch on them.
package validate

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/fetch"
)

// prober is the slice of the fetcher the validator needs.
type prober interface {
	Head(ctx context.Context, url string) (fetch.Response, error)
}

// Validator answers "does this URL resolve to an HTML page". Results are
// cached for the length of one run; transport failures count as absent
// and never abort the run.
type Validator struct {
	probe  prober
	cache  *gocache.Cache
	skip   map[corpus.ResourceType]struct{}
	logger *zap.Logger
}

// New builds a Validator. skipFamilies lists resource families whose URLs
// are always treated as present, no probe issued; the constitution and
// top-level code indexes exist for every state.
func New(probe prober, skipFamilies []corpus.ResourceType, logger *zap.Logger) *Validator {
	skip := make(map[corpus.ResourceType]struct{}, len(skipFamilies))
	for _, f := range skipFamilies {
		skip[f] = struct{}{}
	}
	return &Validator{
		probe:  probe,
		cache:  gocache.New(time.Hour, 2*time.Hour),
		skip:   skip,
		logger: logger,
	}
}

// Validate reports whether the candidate's URL should be fetched.
func (v *Validator) Validate(ctx context.Context, c corpus.CandidateURL) bool {
	if _, skip := v.skip[c.Family]; skip {
		return true
	}
	return v.Exists(ctx, c.URL)
}

// Exists probes one URL. Valid means a 2xx final status with an HTML
// content type.
func (v *Validator) Exists(ctx context.Context, url string) bool {
	if hit, found := v.cache.Get(url); found {
		return hit.(bool)
	}

	resp, err := v.probe.Head(ctx, url)
	if err != nil {
		v.logger.Debug("existence probe failed", zap.String("url", url), zap.Error(err))
		v.cache.SetDefault(url, false)
		return false
	}

	valid := resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		strings.Contains(strings.ToLower(resp.ContentType), "text/html")
	v.cache.SetDefault(url, valid)
	return valid
}
