package classify

import (
	"time"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/hash/sha256"
	"github.com/openlawindex/harvester/internal/jurisdiction"
)

// Non-primary welfare titles score below the top priority band but well
// above keyword-only matches.
const confidenceWelfareAdjacent = 0.8

// Normalizer turns candidates plus extracted metadata into persisted
// records: grammar parse, relevance scoring, hashing, priority assignment.
type Normalizer struct {
	engine *Engine
}

// NewNormalizer builds a normalizer over one tier engine.
func NewNormalizer(engine *Engine) *Normalizer {
	return &Normalizer{engine: engine}
}

// Normalize builds the record for one URL. meta may be nil when the page
// was never fetched (dry runs, offline labeling, fetch failures); the
// record then carries URL-derived fields only and no content hash.
func (n *Normalizer) Normalize(
	c corpus.CandidateURL,
	j jurisdiction.Jurisdiction,
	meta *corpus.PageMeta,
	now time.Time,
) corpus.NormalizedRecord {
	parsed := ParseURL(c.URL)

	title := parsed.Title
	if meta != nil && meta.Title != "" {
		title = meta.Title
	}

	match := n.score(parsed, j, title, c.URL)
	priority := PriorityFor(match.Confidence)
	if parsed.Type == corpus.ResourceUnknown {
		priority = PriorityUnknown
	}

	rec := corpus.NormalizedRecord{
		URL:             c.URL,
		URLHash:         sha256.Short([]byte(c.URL)),
		JurisdictionID:  j.Slug,
		ResourceType:    parsed.Type,
		ResourceSubtype: parsed.Subtype,
		Citation:        parsed.Citation,
		CitationFull:    parsed.CitationFull,
		Title:           title,
		Relevant:        match.Relevant(),
		Confidence:      match.Confidence,
		Reason:          match.Reason,
		Keywords:        match.Keywords,
		Priority:        priority,
		RetrievedAt:     now.UTC(),
	}
	if meta != nil {
		rec.ContentHash = contentHash(meta, c.URL)
	}
	return rec
}

// NormalizeCase wraps Normalize with the opinion-specific fields.
func (n *Normalizer) NormalizeCase(
	c corpus.CandidateURL,
	j jurisdiction.Jurisdiction,
	meta *corpus.PageMeta,
	now time.Time,
) corpus.CaseRecord {
	parsed := ParseURL(c.URL)
	rec := corpus.CaseRecord{
		NormalizedRecord: n.Normalize(c, j, meta, now),
		CourtName:        segmentTitle(parsed.Court),
		CourtLevel:       courtLevel(parsed),
		Year:             parsed.Year,
		CaseID:           parsed.CaseID,
	}
	return rec
}

// score prefers the jurisdiction's known welfare titles, then tiered
// keyword matching over the best text available (title, else the URL
// itself).
func (n *Normalizer) score(parsed ParsedURL, j jurisdiction.Jurisdiction, title, url string) corpus.RelevanceMatch {
	if parsed.Type == corpus.ResourceStatuteTitle {
		if w, ok := j.WelfareTitle(parsed.TitleNumber()); ok {
			conf := ConfidenceHigh
			if !w.Primary {
				conf = confidenceWelfareAdjacent
			}
			return corpus.RelevanceMatch{
				Confidence: conf,
				Reason:     "Direct child welfare title: " + w.Description,
			}
		}
	}
	text := title
	if text == "" {
		text = url
	}
	return n.engine.Score(text)
}

func contentHash(meta *corpus.PageMeta, url string) string {
	basis := meta.Excerpt
	if basis == "" {
		basis = meta.Title
	}
	if basis == "" {
		basis = url
	}
	return sha256.Content(basis)
}

func courtLevel(parsed ParsedURL) string {
	switch parsed.Subtype {
	case "supreme":
		return corpus.CourtLevelSupreme
	case "appellate":
		return corpus.CourtLevelAppellate
	default:
		return corpus.CourtLevelUnknown
	}
}
