// Package corpus defines the shared record types flowing through the
// harvesting pipeline, from enumerated candidates to persisted records.
package corpus

import "time"

// ResourceType identifies which body of law a URL belongs to.
type ResourceType string

// Resource types, in the order families are walked.
const (
	ResourceConstitution ResourceType = "constitution"
	ResourceStatuteTitle ResourceType = "statute_title"
	ResourceAdminRule    ResourceType = "admin_rule"
	ResourceCaseLaw      ResourceType = "case_law"
	ResourceFederalCase  ResourceType = "federal_case"
	ResourceLocality     ResourceType = "locality"
	ResourceUnknown      ResourceType = "unknown"
)

// CandidateURL is an enumerated URL awaiting validation. Ephemeral; never
// persisted.
type CandidateURL struct {
	URL          string
	Jurisdiction string
	Family       ResourceType
	ResourceID   string
}

// RelevanceMatch is the transient output of the tiered classifier.
type RelevanceMatch struct {
	Confidence float64
	Keywords   []string
	Reason     string
}

// Relevant reports whether the match carries any signal.
func (m RelevanceMatch) Relevant() bool {
	return m.Confidence > 0
}

// PageMeta carries what the extractor pulled out of a fetched page. Any
// field may be empty when the page was missing it.
type PageMeta struct {
	Title       string
	Description string
	Canonical   string
	Heading     string
	Excerpt     string
	Links       []string
}

// NormalizedRecord is the persisted unit of the corpus. One line of the
// append-only JSONL logs.
type NormalizedRecord struct {
	URL             string       `json:"url"`
	URLHash         string       `json:"url_hash"`
	JurisdictionID  string       `json:"jurisdiction_id"`
	ResourceType    ResourceType `json:"resource_type"`
	ResourceSubtype string       `json:"resource_subtype,omitempty"`
	Citation        string       `json:"citation,omitempty"`
	CitationFull    string       `json:"citation_full,omitempty"`
	Title           string       `json:"title,omitempty"`
	Relevant        bool         `json:"child_welfare_relevant"`
	Confidence      float64      `json:"confidence"`
	Reason          string       `json:"reason,omitempty"`
	Keywords        []string     `json:"keywords,omitempty"`
	Priority        int          `json:"priority"`
	ContentHash     string       `json:"content_hash,omitempty"`
	RetrievedAt     time.Time    `json:"retrieved_at"`
}

// ProvisionLink records how strongly a case implicates one constitutional
// doctrine category.
type ProvisionLink struct {
	Category string   `json:"category"`
	Score    int      `json:"score"`
	Matched  []string `json:"matched,omitempty"`
}

// CaseRecord extends NormalizedRecord with opinion-specific fields emitted
// by the case-law command.
type CaseRecord struct {
	NormalizedRecord
	CourtName  string          `json:"court_name,omitempty"`
	CourtLevel string          `json:"court_level,omitempty"`
	Year       int             `json:"year,omitempty"`
	CaseID     string          `json:"case_id,omitempty"`
	Provisions []ProvisionLink `json:"provisions,omitempty"`
}

// Court levels for CaseRecord.
const (
	CourtLevelSupreme   = "supreme"
	CourtLevelAppellate = "appellate"
	CourtLevelUnknown   = "unknown"
)

// DriftReport describes one URL whose stored content hash no longer matches.
// Logged and counted, never persisted as a record.
type DriftReport struct {
	URL        string
	OldHash    string
	NewHash    string
	DetectedAt time.Time
}

// RunSummary aggregates one jurisdiction run. Persisted as
// {slug}_summary.json and served by the status API.
type RunSummary struct {
	RunID        string         `json:"run_id"`
	Jurisdiction string         `json:"jurisdiction"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Total        int            `json:"total"`
	Relevant     int            `json:"relevant"`
	ByType       map[string]int `json:"by_type"`
	ByPriority   map[string]int `json:"by_priority"`
	Drifted      int            `json:"drifted"`
	Failed       int            `json:"failed"`
	DryRun       bool           `json:"dry_run,omitempty"`
}
