// Package jurisdiction models the jurisdictions the harvester can walk and
// loads them from an external YAML registry.
package jurisdiction

import "fmt"

// District is a federal district court within a state.
type District struct {
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug" json:"slug"`
}

// TitleRange is an inclusive numeric range of code or rule titles.
type TitleRange struct {
	First int `yaml:"first" json:"first"`
	Last  int `yaml:"last" json:"last"`
}

// YearRange is an inclusive range of opinion years.
type YearRange struct {
	First int `yaml:"first" json:"first"`
	Last  int `yaml:"last" json:"last"`
}

// WelfareTitle describes a statute title known to govern child welfare.
// Primary titles are the core dependency/termination statutes; the rest are
// adjacent (custody, adoption, education).
type WelfareTitle struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Primary     bool   `yaml:"primary" json:"primary"`
}

// Jurisdiction is one state (or the demo fixture) with everything the
// enumerator and classifier need to know about it.
type Jurisdiction struct {
	Name            string         `yaml:"name" json:"name"`
	Slug            string         `yaml:"slug" json:"slug"`
	Abbrev          string         `yaml:"abbrev" json:"abbrev"`
	FIPS            string         `yaml:"fips" json:"fips"`
	Circuit         string         `yaml:"circuit" json:"circuit"`
	CircuitSlug     string         `yaml:"circuit_slug" json:"circuit_slug"`
	Districts       []District     `yaml:"districts" json:"districts"`
	AppellateCourts []string       `yaml:"appellate_courts" json:"appellate_courts"`
	CodeTitles      TitleRange     `yaml:"code_titles" json:"code_titles"`
	AdminTitles     TitleRange     `yaml:"admin_titles" json:"admin_titles"`
	CaseYears       YearRange      `yaml:"case_years" json:"case_years"`
	IrregularTitles []string       `yaml:"irregular_titles" json:"irregular_titles"`
	WelfareTitles   []WelfareTitle `yaml:"welfare_titles" json:"welfare_titles"`
}

// Validate checks the fields the pipeline depends on.
func (j Jurisdiction) Validate() error {
	if j.Slug == "" {
		return fmt.Errorf("jurisdiction %q: empty slug", j.Name)
	}
	if j.Name == "" {
		return fmt.Errorf("jurisdiction %q: empty name", j.Slug)
	}
	if j.CodeTitles.Last < j.CodeTitles.First {
		return fmt.Errorf("jurisdiction %q: inverted code title range", j.Slug)
	}
	if j.AdminTitles.Last < j.AdminTitles.First {
		return fmt.Errorf("jurisdiction %q: inverted admin title range", j.Slug)
	}
	if j.CaseYears.Last < j.CaseYears.First {
		return fmt.Errorf("jurisdiction %q: inverted case year range", j.Slug)
	}
	return nil
}

// WelfareTitle returns the welfare entry for a statute title number, if any.
func (j Jurisdiction) WelfareTitle(title string) (WelfareTitle, bool) {
	for _, w := range j.WelfareTitles {
		if w.Title == title {
			return w, true
		}
	}
	return WelfareTitle{}, false
}
