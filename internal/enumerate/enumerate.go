// Package enumerate expands a jurisdiction's metadata into candidate URLs.
// Enumeration is pure: no network, no clocks, same output for the same
// input on every run.
package enumerate

import (
	"fmt"
	"strings"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/jurisdiction"
)

// Appellate court listings before this year are not published by the
// sources, regardless of how far back the jurisdiction's supreme court goes.
const appellateYearFloor = 1960

// Hosts are the base URLs the templates expand against.
type Hosts struct {
	Law        string
	Regulation string
	Locality   string
}

// Enumerator builds candidate URLs for each resource family.
type Enumerator struct {
	hosts Hosts
}

// New returns an enumerator using the given base hosts.
func New(hosts Hosts) *Enumerator {
	return &Enumerator{hosts: hosts}
}

// Walk yields every candidate for the jurisdiction in canonical family
// order: constitution, statute titles, admin rules, state courts, federal
// courts, localities. Returning false from yield stops the walk; a fresh
// Walk restarts from the beginning.
func (e *Enumerator) Walk(j jurisdiction.Jurisdiction, yield func(corpus.CandidateURL) bool) {
	families := [][]corpus.CandidateURL{
		e.Constitution(j),
		e.StatuteTitles(j),
		e.AdminRules(j),
		e.StateCourts(j),
		e.FederalCourts(j),
		e.Localities(j),
	}
	for _, family := range families {
		for _, c := range family {
			if !yield(c) {
				return
			}
		}
	}
}

// All collects the full walk into a slice.
func (e *Enumerator) All(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	var all []corpus.CandidateURL
	e.Walk(j, func(c corpus.CandidateURL) bool {
		all = append(all, c)
		return true
	})
	return all
}

// Constitution yields the single constitution index page.
func (e *Enumerator) Constitution(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	return []corpus.CandidateURL{{
		URL:          fmt.Sprintf("%s/constitution/%s/", e.law(), j.Slug),
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceConstitution,
		ResourceID:   "index",
	}}
}

// StatuteTitles yields the codes index plus one URL per title in the
// numeric range, then any irregular suffixed titles.
func (e *Enumerator) StatuteTitles(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	out := []corpus.CandidateURL{{
		URL:          fmt.Sprintf("%s/codes/%s/", e.law(), j.Slug),
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceStatuteTitle,
		ResourceID:   "index",
	}}
	for _, title := range titleSequence(j.CodeTitles, j.IrregularTitles) {
		out = append(out, corpus.CandidateURL{
			URL:          fmt.Sprintf("%s/codes/%s/title-%s/", e.law(), j.Slug, title),
			Jurisdiction: j.Slug,
			Family:       corpus.ResourceStatuteTitle,
			ResourceID:   "title-" + title,
		})
	}
	return out
}

// AdminRules yields the regulations index plus one URL per admin title.
// Irregular suffixes apply only to statute codes, not administrative rules.
func (e *Enumerator) AdminRules(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	out := []corpus.CandidateURL{{
		URL:          fmt.Sprintf("%s/states/%s/", e.regulation(), j.Slug),
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceAdminRule,
		ResourceID:   "index",
	}}
	for _, title := range titleSequence(j.AdminTitles, nil) {
		out = append(out, corpus.CandidateURL{
			URL:          fmt.Sprintf("%s/states/%s/title-%s/", e.regulation(), j.Slug, title),
			Jurisdiction: j.Slug,
			Family:       corpus.ResourceAdminRule,
			ResourceID:   "title-" + title,
		})
	}
	return out
}

// StateCourts yields one listing per supreme-court year, then one per
// (appellate court, year). Appellate years floor at appellateYearFloor.
// Jurisdictions with no intermediate appellate courts get none.
func (e *Enumerator) StateCourts(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	var out []corpus.CandidateURL
	for year := j.CaseYears.First; year <= j.CaseYears.Last; year++ {
		out = append(out, corpus.CandidateURL{
			URL:          fmt.Sprintf("%s/cases/%s/supreme-court/%d/", e.law(), j.Slug, year),
			Jurisdiction: j.Slug,
			Family:       corpus.ResourceCaseLaw,
			ResourceID:   fmt.Sprintf("supreme-court-%d", year),
		})
	}
	appellateFirst := j.CaseYears.First
	if appellateFirst < appellateYearFloor {
		appellateFirst = appellateYearFloor
	}
	for _, court := range j.AppellateCourts {
		for year := appellateFirst; year <= j.CaseYears.Last; year++ {
			out = append(out, corpus.CandidateURL{
				URL:          fmt.Sprintf("%s/cases/%s/%s/%d/", e.law(), j.Slug, court, year),
				Jurisdiction: j.Slug,
				Family:       corpus.ResourceCaseLaw,
				ResourceID:   fmt.Sprintf("%s-%d", court, year),
			})
		}
	}
	return out
}

// FederalCourts yields the circuit index plus one index per district.
func (e *Enumerator) FederalCourts(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	out := []corpus.CandidateURL{{
		URL:          fmt.Sprintf("%s/cases/federal/appellate-courts/%s/", e.law(), j.CircuitSlug),
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceFederalCase,
		ResourceID:   j.CircuitSlug,
	}}
	for _, d := range j.Districts {
		out = append(out, corpus.CandidateURL{
			URL:          fmt.Sprintf("%s/cases/federal/district-courts/%s/", e.law(), d.Slug),
			Jurisdiction: j.Slug,
			Family:       corpus.ResourceFederalCase,
			ResourceID:   d.Slug,
		})
	}
	return out
}

// Localities yields the jurisdiction's place listing index.
func (e *Enumerator) Localities(j jurisdiction.Jurisdiction) []corpus.CandidateURL {
	return []corpus.CandidateURL{{
		URL:          fmt.Sprintf("%s/%s/list/", e.locality(), j.Slug),
		Jurisdiction: j.Slug,
		Family:       corpus.ResourceLocality,
		ResourceID:   "list",
	}}
}

func titleSequence(r jurisdiction.TitleRange, irregular []string) []string {
	var titles []string
	for n := r.First; n <= r.Last; n++ {
		titles = append(titles, fmt.Sprintf("%d", n))
	}
	titles = append(titles, irregular...)
	return titles
}

func (e *Enumerator) law() string {
	return strings.TrimRight(e.hosts.Law, "/")
}

func (e *Enumerator) regulation() string {
	return strings.TrimRight(e.hosts.Regulation, "/")
}

func (e *Enumerator) locality() string {
	return strings.TrimRight(e.hosts.Locality, "/")
}
