package classify

import (
	"sort"
	"strings"

	"github.com/openlawindex/harvester/internal/corpus"
)

// ProvisionCategory is one constitutional doctrine a case can implicate.
type ProvisionCategory struct {
	Name     string
	Keywords []Pattern
	// Baseline categories keep a minimum score of one for every case even
	// with zero keyword hits. Which categories are baseline is
	// configuration, not code.
	Baseline bool
}

// CrossReferencer links case text to constitutional provision categories.
type CrossReferencer struct {
	categories []ProvisionCategory
}

// NewCrossReferencer builds a cross-referencer over the given categories,
// flipping the baseline flag on for every name in baselineNames.
func NewCrossReferencer(categories []ProvisionCategory, baselineNames []string) *CrossReferencer {
	baseline := make(map[string]struct{}, len(baselineNames))
	for _, name := range baselineNames {
		baseline[strings.ToUpper(name)] = struct{}{}
	}
	out := make([]ProvisionCategory, len(categories))
	copy(out, categories)
	for i := range out {
		_, on := baseline[out[i].Name]
		out[i].Baseline = on
	}
	return &CrossReferencer{categories: out}
}

// Link scores the text against every category and returns the categories
// with a nonzero score, sorted by score descending then name. Baseline
// categories always appear with at least score one.
func (c *CrossReferencer) Link(text string) []corpus.ProvisionLink {
	var links []corpus.ProvisionLink
	for _, cat := range c.categories {
		var matched []string
		for _, p := range cat.Keywords {
			if p.re.MatchString(text) {
				matched = append(matched, p.Label)
			}
		}
		score := len(matched)
		if score == 0 && cat.Baseline {
			score = 1
		}
		if score == 0 {
			continue
		}
		links = append(links, corpus.ProvisionLink{Category: cat.Name, Score: score, Matched: matched})
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Score != links[j].Score {
			return links[i].Score > links[j].Score
		}
		return links[i].Category < links[j].Category
	})
	return links
}

// DefaultProvisionCategories returns the doctrine tables used for case
// cross-referencing. Baseline flags are off; callers enable them from
// configuration via NewCrossReferencer.
func DefaultProvisionCategories() []ProvisionCategory {
	return []ProvisionCategory{
		{
			Name: "SEARCH_SEIZURE",
			Keywords: []Pattern{
				MustPattern(`\bsearch\s+and\s+seizure\b`, "search and seizure"),
				MustPattern(`\bwarrantless\b`, "warrantless"),
				MustPattern(`\bfourth\s+amendment\b`, "fourth amendment"),
				MustPattern(`\bunreasonable\s+search\b`, "unreasonable search"),
				MustPattern(`\bhome\s+entry\b`, "home entry"),
			},
		},
		{
			Name: "DUE_PROCESS",
			Keywords: []Pattern{
				MustPattern(`\bdue\s+process\b`, "due process"),
				MustPattern(`\bfourteenth\s+amendment\b`, "fourteenth amendment"),
				MustPattern(`\bnotice\s+and\s+(?:an\s+)?opportunity\b`, "notice and opportunity"),
				MustPattern(`\bfundamental\s+fairness\b`, "fundamental fairness"),
			},
		},
		{
			Name: "FAMILY_INTEGRITY",
			Keywords: []Pattern{
				MustPattern(`\bfamily\s+integrity\b`, "family integrity"),
				MustPattern(`\bparental\s+liberty\b`, "parental liberty"),
				MustPattern(`\bfundamental\s+right\s+to\s+parent\b`, "right to parent"),
				MustPattern(`\bcare,?\s+custody,?\s+and\s+control\b`, "care custody and control"),
				MustPattern(`\btroxel\b`, "troxel"),
				MustPattern(`\bsantosky\b`, "santosky"),
			},
		},
		{
			Name: "EQUAL_PROTECTION",
			Keywords: []Pattern{
				MustPattern(`\bequal\s+protection\b`, "equal protection"),
				MustPattern(`\bdiscriminat(?:ion|ory)\b`, "discrimination"),
				MustPattern(`\bsuspect\s+class\b`, "suspect class"),
			},
		},
		{
			Name: "SELF_INCRIMINATION",
			Keywords: []Pattern{
				MustPattern(`\bself.?incrimination\b`, "self-incrimination"),
				MustPattern(`\bfifth\s+amendment\b`, "fifth amendment"),
				MustPattern(`\bmiranda\b`, "miranda"),
			},
		},
		{
			Name: "RIGHT_TO_COUNSEL",
			Keywords: []Pattern{
				MustPattern(`\bright\s+to\s+counsel\b`, "right to counsel"),
				MustPattern(`\bineffective\s+assistance\b`, "ineffective assistance"),
				MustPattern(`\bappointed\s+counsel\b`, "appointed counsel"),
				MustPattern(`\bsixth\s+amendment\b`, "sixth amendment"),
			},
		},
		{
			Name: "RELIGION",
			Keywords: []Pattern{
				MustPattern(`\bfree\s+exercise\b`, "free exercise"),
				MustPattern(`\breligious\s+(?:belief|objection|exemption)\b`, "religious belief"),
				MustPattern(`\bfirst\s+amendment\b`, "first amendment"),
			},
		},
		{
			Name: "SECTION_1983",
			Keywords: []Pattern{
				MustPattern(`\b(?:section|§)\s*1983\b`, "section 1983"),
				MustPattern(`\bcivil\s+rights\s+action\b`, "civil rights action"),
				MustPattern(`\bqualified\s+immunity\b`, "qualified immunity"),
				MustPattern(`\bcolor\s+of\s+(?:state\s+)?law\b`, "color of law"),
			},
		},
	}
}
