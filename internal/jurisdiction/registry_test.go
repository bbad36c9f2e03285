package jurisdiction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRegistry = `
jurisdictions:
  - name: Alabama
    slug: alabama
    abbrev: AL
    fips: "01"
    circuit: Eleventh Circuit
    circuit_slug: ca11
    districts:
      - name: Northern District of Alabama
        slug: alnd
      - name: Middle District of Alabama
        slug: almd
    appellate_courts:
      - court-of-civil-appeals
      - court-of-criminal-appeals
    code_titles: {first: 1, last: 45}
    admin_titles: {first: 1, last: 999}
    case_years: {first: 1950, last: 2025}
    irregular_titles: ["10a", "13a", "26a", "38a"]
    welfare_titles:
      - title: "12"
        description: Courts (juvenile proceedings)
        primary: true
      - title: "26"
        description: Infants and Incompetents
        primary: true
      - title: "30"
        description: Marital and Domestic Relations
        primary: false
  - name: Demo
    slug: demo
    abbrev: XX
    fips: "00"
    circuit: First Circuit
    circuit_slug: ca1
    code_titles: {first: 1, last: 3}
    admin_titles: {first: 1, last: 2}
    case_years: {first: 2020, last: 2021}
`

func TestLoadParsesRegistry(t *testing.T) {
	t.Parallel()

	reg, err := Load([]byte(sampleRegistry))
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	al, ok := reg.Get("alabama")
	require.True(t, ok)
	require.Equal(t, "AL", al.Abbrev)
	require.Equal(t, "ca11", al.CircuitSlug)
	require.Len(t, al.Districts, 2)
	require.Equal(t, []string{"10a", "13a", "26a", "38a"}, al.IrregularTitles)
}

func TestLoadRejectsDuplicateSlugs(t *testing.T) {
	t.Parallel()

	doubled := sampleRegistry + `
  - name: Demo Again
    slug: demo
    abbrev: XY
    fips: "00"
    circuit: First Circuit
    circuit_slug: ca1
    code_titles: {first: 1, last: 1}
    admin_titles: {first: 1, last: 1}
    case_years: {first: 2020, last: 2020}
`
	_, err := Load([]byte(doubled))
	require.ErrorContains(t, err, "duplicate jurisdiction slug")
}

func TestLoadRejectsInvertedRanges(t *testing.T) {
	t.Parallel()

	bad := `
jurisdictions:
  - name: Broken
    slug: broken
    abbrev: BR
    fips: "99"
    circuit: First Circuit
    circuit_slug: ca1
    code_titles: {first: 9, last: 1}
    admin_titles: {first: 1, last: 1}
    case_years: {first: 2020, last: 2020}
`
	_, err := Load([]byte(bad))
	require.ErrorContains(t, err, "inverted code title range")
}

func TestSlugsSorted(t *testing.T) {
	t.Parallel()

	reg, err := Load([]byte(sampleRegistry))
	require.NoError(t, err)
	require.Equal(t, []string{"alabama", "demo"}, reg.Slugs())
}

func TestWelfareTitleLookup(t *testing.T) {
	t.Parallel()

	reg, err := Load([]byte(sampleRegistry))
	require.NoError(t, err)
	al, _ := reg.Get("alabama")

	w, ok := al.WelfareTitle("26")
	require.True(t, ok)
	require.True(t, w.Primary)

	w, ok = al.WelfareTitle("30")
	require.True(t, ok)
	require.False(t, w.Primary)

	_, ok = al.WelfareTitle("7")
	require.False(t, ok)
}
