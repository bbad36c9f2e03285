package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openlawindex/harvester/internal/corpus"
)

// ParsedURL is what the grammar recovered from a URL alone, before any
// page content is consulted.
type ParsedURL struct {
	Type         corpus.ResourceType
	Subtype      string
	State        string
	Citation     string
	CitationFull string
	Title        string
	Court        string
	Year         int
	CaseID       string
}

type urlRule struct {
	re    *regexp.Regexp
	build func(m []string) ParsedURL
}

// Grammar rules in match order. Federal patterns precede state case
// patterns so "federal" is never taken for a state slug; title patterns
// precede their index patterns. First match wins.
var urlRules = []urlRule{
	{
		re: regexp.MustCompile(`^https?://[^/]+/constitution/([a-z-]+)/([a-z0-9-]+(?:/[a-z0-9-]+)*)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceConstitution,
				Subtype:      "section",
				State:        m[1],
				Citation:     lastSegment(m[2]),
				CitationFull: fmt.Sprintf("%s Constitution, %s", slugName(m[1]), segmentTitle(lastSegment(m[2]))),
				Title:        segmentTitle(lastSegment(m[2])),
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/constitution/([a-z-]+)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceConstitution,
				Subtype:      "index",
				State:        m[1],
				CitationFull: slugName(m[1]) + " Constitution",
				Title:        slugName(m[1]) + " Constitution",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/codes/([a-z-]+)/title-([0-9]+[a-z]?)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceStatuteTitle,
				Subtype:      "title",
				State:        m[1],
				Citation:     "Title " + strings.ToUpper(m[2]),
				CitationFull: fmt.Sprintf("%s Code Title %s", slugName(m[1]), strings.ToUpper(m[2])),
				Title:        fmt.Sprintf("%s Code Title %s", slugName(m[1]), strings.ToUpper(m[2])),
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/codes/([a-z-]+)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceStatuteTitle,
				Subtype:      "index",
				State:        m[1],
				CitationFull: slugName(m[1]) + " Code",
				Title:        slugName(m[1]) + " Code",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://regulations\.[^/]+/states/([a-z-]+)/title-([0-9]+[a-z]?)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceAdminRule,
				Subtype:      "title",
				State:        m[1],
				Citation:     "Admin. Title " + strings.ToUpper(m[2]),
				CitationFull: fmt.Sprintf("%s Administrative Code Title %s", slugName(m[1]), strings.ToUpper(m[2])),
				Title:        fmt.Sprintf("%s Administrative Code Title %s", slugName(m[1]), strings.ToUpper(m[2])),
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://regulations\.[^/]+/states/([a-z-]+)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:         corpus.ResourceAdminRule,
				Subtype:      "index",
				State:        m[1],
				CitationFull: slugName(m[1]) + " Administrative Code",
				Title:        slugName(m[1]) + " Administrative Code",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/cases/federal/appellate-courts/([a-z0-9-]+)/?`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:    corpus.ResourceFederalCase,
				Subtype: "circuit",
				Court:   m[1],
				Title:   strings.ToUpper(m[1]) + " opinions",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/cases/federal/district-courts/([a-z0-9-]+)/?`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:    corpus.ResourceFederalCase,
				Subtype: "district",
				Court:   m[1],
				Title:   strings.ToUpper(m[1]) + " opinions",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/cases/([a-z-]+)/supreme-court/(\d{4})/(?:([a-z0-9.-]+)(?:\.html)?/?)?$`),
		build: func(m []string) ParsedURL {
			year, _ := strconv.Atoi(m[2])
			p := ParsedURL{
				Type:    corpus.ResourceCaseLaw,
				Subtype: "supreme",
				State:   m[1],
				Court:   "supreme-court",
				Year:    year,
				CaseID:  strings.TrimSuffix(m[3], ".html"),
			}
			if p.CaseID == "" {
				p.Title = fmt.Sprintf("%s Supreme Court opinions, %d", slugName(m[1]), year)
			}
			return p
		},
	},
	{
		re: regexp.MustCompile(`^https?://[^/]+/cases/([a-z-]+)/([a-z0-9-]+)/(\d{4})/(?:([a-z0-9.-]+)(?:\.html)?/?)?$`),
		build: func(m []string) ParsedURL {
			year, _ := strconv.Atoi(m[3])
			p := ParsedURL{
				Type:    corpus.ResourceCaseLaw,
				Subtype: "appellate",
				State:   m[1],
				Court:   m[2],
				Year:    year,
				CaseID:  strings.TrimSuffix(m[4], ".html"),
			}
			if p.CaseID == "" {
				p.Title = fmt.Sprintf("%s %s opinions, %d", slugName(m[1]), segmentTitle(m[2]), year)
			}
			return p
		},
	},
	{
		re: regexp.MustCompile(`^https?://stats\.[^/]+/([a-z-]+)/list/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:    corpus.ResourceLocality,
				Subtype: "index",
				State:   m[1],
				Title:   slugName(m[1]) + " localities",
			}
		},
	},
	{
		re: regexp.MustCompile(`^https?://stats\.[^/]+/([a-z-]+)/([a-z0-9-]+)/?$`),
		build: func(m []string) ParsedURL {
			return ParsedURL{
				Type:    corpus.ResourceLocality,
				Subtype: "place",
				State:   m[1],
				Title:   segmentTitle(m[2]) + ", " + slugName(m[1]),
			}
		},
	},
}

// ParseURL runs the grammar over a URL. URLs no rule recognizes come back
// with ResourceUnknown; they are still recorded downstream.
func ParseURL(rawURL string) ParsedURL {
	for _, rule := range urlRules {
		if m := rule.re.FindStringSubmatch(rawURL); m != nil {
			return rule.build(m)
		}
	}
	return ParsedURL{Type: corpus.ResourceUnknown}
}

// TitleNumber extracts the bare title number ("26", "10a") from a statute
// title citation, or "" when there is none.
func (p ParsedURL) TitleNumber() string {
	const prefix = "Title "
	i := strings.Index(p.Citation, prefix)
	if i < 0 {
		return ""
	}
	return strings.ToLower(p.Citation[i+len(prefix):])
}

func lastSegment(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	return segs[len(segs)-1]
}

func slugName(slug string) string {
	return segmentTitle(slug)
}

// segmentTitle turns "court-of-civil-appeals" into "Court Of Civil Appeals".
func segmentTitle(seg string) string {
	words := strings.Split(seg, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
