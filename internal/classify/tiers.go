// Package classify scores legal URLs, page text, and case titles for
// child-welfare relevance and normalizes them into corpus records.
package classify

import (
	"regexp"
	"strings"

	"github.com/openlawindex/harvester/internal/corpus"
)

// Tier confidences. Tiers are exclusive: the highest matching tier wins.
const (
	ConfidenceHigh   = 1.0
	ConfidenceMedium = 0.7
	ConfidenceLow    = 0.3
)

// Pattern pairs a compiled regex with the keyword label reported on match.
type Pattern struct {
	re    *regexp.Regexp
	Label string
}

// MustPattern compiles a case-insensitive pattern.
func MustPattern(expr, label string) Pattern {
	return Pattern{re: regexp.MustCompile("(?i)" + expr), Label: label}
}

// Tiers holds the pattern tables for one engine.
type Tiers struct {
	// Exclusions short-circuit everything else. ExclusionReason is the
	// reason reported when one fires.
	Exclusions      []Pattern
	ExclusionReason string
	High            []Pattern
	Medium          []Pattern
	Low             []Pattern
}

// Engine applies tiered keyword scoring to arbitrary text.
type Engine struct {
	tiers Tiers
}

// NewEngine builds an engine over the given tier tables.
func NewEngine(tiers Tiers) *Engine {
	if tiers.ExclusionReason == "" {
		tiers.ExclusionReason = "Excluded: matched exclusion pattern"
	}
	return &Engine{tiers: tiers}
}

// Score classifies text. Exclusions are checked first and force a
// non-relevant result with the exclusion reason. Otherwise the highest
// tier with at least one match decides the confidence; matched labels are
// merged in pattern order with duplicates dropped.
func (e *Engine) Score(text string) corpus.RelevanceMatch {
	if text == "" {
		return corpus.RelevanceMatch{}
	}
	for _, p := range e.tiers.Exclusions {
		if p.re.MatchString(text) {
			return corpus.RelevanceMatch{Reason: e.tiers.ExclusionReason}
		}
	}
	if labels := matchLabels(e.tiers.High, text); len(labels) > 0 {
		return corpus.RelevanceMatch{
			Confidence: ConfidenceHigh,
			Keywords:   labels,
			Reason:     "High relevance: " + strings.Join(labels, ", "),
		}
	}
	if labels := matchLabels(e.tiers.Medium, text); len(labels) > 0 {
		return corpus.RelevanceMatch{
			Confidence: ConfidenceMedium,
			Keywords:   labels,
			Reason:     "Medium relevance: " + strings.Join(labels, ", "),
		}
	}
	if labels := matchLabels(e.tiers.Low, text); len(labels) > 0 {
		return corpus.RelevanceMatch{
			Confidence: ConfidenceLow,
			Keywords:   labels,
			Reason:     "Low relevance: " + strings.Join(labels, ", "),
		}
	}
	return corpus.RelevanceMatch{}
}

func matchLabels(patterns []Pattern, text string) []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, p := range patterns {
		if !p.re.MatchString(text) {
			continue
		}
		if _, dup := seen[p.Label]; dup {
			continue
		}
		seen[p.Label] = struct{}{}
		labels = append(labels, p.Label)
	}
	return labels
}

// PriorityFor maps confidence to serialization priority. Unknown resource
// types override this to 5 at normalization time.
func PriorityFor(confidence float64) int {
	switch {
	case confidence >= 0.9:
		return 1
	case confidence >= 0.5:
		return 2
	case confidence > 0:
		return 3
	default:
		return 4
	}
}

// PriorityUnknown is the forced priority for URLs no grammar pattern
// recognized.
const PriorityUnknown = 5
