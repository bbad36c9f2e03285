package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openlawindex/harvester/internal/corpus"
)

func TestParseURLStatuteTitle(t *testing.T) {
	t.Parallel()

	p := ParseURL("https://law.justia.com/codes/alabama/title-26/")
	require.Equal(t, corpus.ResourceStatuteTitle, p.Type)
	require.Equal(t, "title", p.Subtype)
	require.Equal(t, "alabama", p.State)
	require.Equal(t, "Title 26", p.Citation)
	require.Equal(t, "Alabama Code Title 26", p.CitationFull)
	require.Equal(t, "26", p.TitleNumber())
}

func TestParseURLIrregularTitleSuffix(t *testing.T) {
	t.Parallel()

	p := ParseURL("https://law.justia.com/codes/alabama/title-10a/")
	require.Equal(t, corpus.ResourceStatuteTitle, p.Type)
	require.Equal(t, "Title 10A", p.Citation)
	require.Equal(t, "10a", p.TitleNumber())
}

func TestParseURLCodesIndex(t *testing.T) {
	t.Parallel()

	p := ParseURL("https://law.justia.com/codes/alabama/")
	require.Equal(t, corpus.ResourceStatuteTitle, p.Type)
	require.Equal(t, "index", p.Subtype)
}

func TestParseURLConstitution(t *testing.T) {
	t.Parallel()

	index := ParseURL("https://law.justia.com/constitution/alabama/")
	require.Equal(t, corpus.ResourceConstitution, index.Type)
	require.Equal(t, "index", index.Subtype)

	section := ParseURL("https://law.justia.com/constitution/alabama/article-1/section-6/")
	require.Equal(t, corpus.ResourceConstitution, section.Type)
	require.Equal(t, "section", section.Subtype)
	require.Equal(t, "section-6", section.Citation)
}

func TestParseURLAdminRule(t *testing.T) {
	t.Parallel()

	p := ParseURL("https://regulations.justia.com/states/colorado/title-19/")
	require.Equal(t, corpus.ResourceAdminRule, p.Type)
	require.Equal(t, "Admin. Title 19", p.Citation)

	index := ParseURL("https://regulations.justia.com/states/colorado/")
	require.Equal(t, corpus.ResourceAdminRule, index.Type)
	require.Equal(t, "index", index.Subtype)
}

func TestParseURLStateCourts(t *testing.T) {
	t.Parallel()

	supreme := ParseURL("https://law.justia.com/cases/alabama/supreme-court/2020/")
	require.Equal(t, corpus.ResourceCaseLaw, supreme.Type)
	require.Equal(t, "supreme", supreme.Subtype)
	require.Equal(t, 2020, supreme.Year)
	require.Empty(t, supreme.CaseID)

	opinion := ParseURL("https://law.justia.com/cases/alabama/supreme-court/2020/1190908.html")
	require.Equal(t, "1190908", opinion.CaseID)

	appellate := ParseURL("https://law.justia.com/cases/alabama/court-of-civil-appeals/1999/")
	require.Equal(t, corpus.ResourceCaseLaw, appellate.Type)
	require.Equal(t, "appellate", appellate.Subtype)
	require.Equal(t, "court-of-civil-appeals", appellate.Court)
	require.Equal(t, 1999, appellate.Year)
}

func TestParseURLFederalBeforeStatePatterns(t *testing.T) {
	t.Parallel()

	circuit := ParseURL("https://law.justia.com/cases/federal/appellate-courts/ca11/")
	require.Equal(t, corpus.ResourceFederalCase, circuit.Type)
	require.Equal(t, "circuit", circuit.Subtype)
	require.Equal(t, "ca11", circuit.Court)

	district := ParseURL("https://law.justia.com/cases/federal/district-courts/alnd/")
	require.Equal(t, corpus.ResourceFederalCase, district.Type)
	require.Equal(t, "district", district.Subtype)
}

func TestParseURLLocalities(t *testing.T) {
	t.Parallel()

	list := ParseURL("https://stats.justia.com/alabama/list/")
	require.Equal(t, corpus.ResourceLocality, list.Type)
	require.Equal(t, "index", list.Subtype)

	place := ParseURL("https://stats.justia.com/alabama/birmingham/")
	require.Equal(t, corpus.ResourceLocality, place.Type)
	require.Equal(t, "place", place.Subtype)
	require.Equal(t, "Birmingham, Alabama", place.Title)
}

func TestParseURLUnknown(t *testing.T) {
	t.Parallel()

	p := ParseURL("https://example.com/totally/unrelated?page=2")
	require.Equal(t, corpus.ResourceUnknown, p.Type)
	require.Empty(t, p.Citation)
}

func TestParseURLFirstMatchWins(t *testing.T) {
	t.Parallel()

	// A supreme-court URL also shape-matches the generic appellate rule;
	// the earlier supreme rule must take it.
	p := ParseURL("https://law.justia.com/cases/demo/supreme-court/2021/")
	require.Equal(t, "supreme", p.Subtype)
}
