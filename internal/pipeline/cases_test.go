package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/classify"
	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/enumerate"
	"github.com/openlawindex/harvester/internal/fetch"
	"github.com/openlawindex/harvester/internal/jurisdiction"
	"github.com/openlawindex/harvester/internal/metrics"
)

type fetcherFunc func(ctx context.Context, url string) (fetch.Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (fetch.Response, error) {
	return f(ctx, url)
}

type memoryCaseSink struct {
	records []corpus.CaseRecord
}

func (s *memoryCaseSink) AppendCase(rec corpus.CaseRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func newCaseHarvester(f fetcherFunc, sink caseSink) *CaseHarvester {
	metrics.Init()
	engine := classify.NewEngine(classify.DefaultTiers())
	return NewCaseHarvester(
		enumerate.New(testHosts()),
		f,
		engine,
		classify.NewCrossReferencer(classify.DefaultProvisionCategories(), []string{"DUE_PROCESS"}),
		classify.NewNormalizer(engine),
		sink,
		zap.NewNop(),
	)
}

const listingPage = `<html><body>
<a href="/cases/testland/supreme-court/2020/1180687.html">In re T.M.: termination of parental rights and due process</a>
<a href="/cases/testland/supreme-court/2020/1190022.html">Smith v. Jones Contracting</a>
<a href="/cases/testland/supreme-court/2020/1190099.html">Estate of Brown (guardianship)</a>
<a href="/cases/testland/supreme-court/2020/1180687.html">In re T.M. (duplicate link)</a>
<a href="/cases/testland/supreme-court/2020/">Next page</a>
<a href="https://elsewhere.example.org/cases/testland/supreme-court/2020/off.html">Offsite</a>
</body></html>`

func TestCaseHarvestStoresRelevantOpinions(t *testing.T) {
	listingURL := "https://law.example.com/cases/testland/supreme-court/2020/"
	sink := &memoryCaseSink{}
	h := newCaseHarvester(func(_ context.Context, url string) (fetch.Response, error) {
		if url == listingURL {
			return fetch.Response{URL: url, StatusCode: 200, Body: []byte(listingPage)}, nil
		}
		return fetch.Response{URL: url, StatusCode: 404}, nil
	}, sink)

	stats, err := h.Harvest(context.Background(), testJurisdiction("testland"), CaseOptions{})
	require.NoError(t, err)

	require.Equal(t, 1, stats.Listings)
	require.Zero(t, stats.ListingsFailed)
	require.Equal(t, 3, stats.Candidates)
	require.Equal(t, 1, stats.Stored)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "1180687", rec.CaseID)
	require.Equal(t, "Supreme Court", rec.CourtName)
	require.Equal(t, corpus.CourtLevelSupreme, rec.CourtLevel)
	require.Equal(t, 2020, rec.Year)
	require.True(t, rec.Relevant)
	require.Equal(t, 1, rec.Priority)
	require.NotEmpty(t, rec.ContentHash)

	require.Len(t, rec.Provisions, 1)
	require.Equal(t, "DUE_PROCESS", rec.Provisions[0].Category)
	require.Equal(t, []string{"due process"}, rec.Provisions[0].Matched)
}

func TestCaseHarvestCountsUnavailableListings(t *testing.T) {
	j := testJurisdiction("testland")
	j.CaseYears = jurisdiction.YearRange{First: 2019, Last: 2020}

	served := "https://law.example.com/cases/testland/supreme-court/2020/"
	sink := &memoryCaseSink{}
	h := newCaseHarvester(func(_ context.Context, url string) (fetch.Response, error) {
		if url == served {
			return fetch.Response{URL: url, StatusCode: 200, Body: []byte(listingPage)}, nil
		}
		return fetch.Response{URL: url, StatusCode: 404}, nil
	}, sink)

	stats, err := h.Harvest(context.Background(), j, CaseOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Listings)
	require.Equal(t, 1, stats.ListingsFailed)
	require.Equal(t, 1, stats.Stored)
}

func TestCaseHarvestYearAndCourtFilters(t *testing.T) {
	j := testJurisdiction("testland")
	j.CaseYears = jurisdiction.YearRange{First: 2018, Last: 2021}
	j.AppellateCourts = []string{"court-of-appeals"}

	var fetched []string
	h := newCaseHarvester(func(_ context.Context, url string) (fetch.Response, error) {
		fetched = append(fetched, url)
		return fetch.Response{URL: url, StatusCode: 404}, nil
	}, &memoryCaseSink{})

	stats, err := h.Harvest(context.Background(), j, CaseOptions{
		Court:    "supreme-court",
		FromYear: 2020,
		ToYear:   2020,
	})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Listings)
	require.Equal(t, []string{"https://law.example.com/cases/testland/supreme-court/2020/"}, fetched)
}

func TestCaseHarvestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newCaseHarvester(func(context.Context, string) (fetch.Response, error) {
		return fetch.Response{StatusCode: 200}, nil
	}, &memoryCaseSink{})

	_, err := h.Harvest(ctx, testJurisdiction("testland"), CaseOptions{})
	require.Error(t, err)
}
