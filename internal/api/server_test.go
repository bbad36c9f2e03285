package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/metrics"
	"github.com/openlawindex/harvester/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	metrics.Init()
	st, err := store.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewServer(st, zap.NewNop()), st
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(t, s, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListSummaries(t *testing.T) {
	s, st := newTestServer(t)
	require.NoError(t, st.WriteSummary(corpus.RunSummary{
		RunID:        "run-1",
		Jurisdiction: "alabama",
		StartedAt:    time.Now().UTC(),
		Total:        3,
	}))

	rec := doRequest(t, s, http.MethodGet, "/api/summaries")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Summaries []corpus.RunSummary `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Summaries, 1)
	require.Equal(t, "alabama", payload.Summaries[0].Jurisdiction)
}

func TestGetSummaryNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/summaries/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummaryRejectsBadSlug(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/summaries/Not_A_Slug")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRecordsWindowed(t *testing.T) {
	s, st := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.Append(corpus.NormalizedRecord{
			URL:            fmt.Sprintf("https://law.example.com/codes/alabama/title-%d/", i+1),
			JurisdictionID: "alabama",
			ResourceType:   corpus.ResourceStatuteTitle,
			RetrievedAt:    time.Now().UTC(),
		}))
	}

	rec := doRequest(t, s, http.MethodGet, "/api/records/alabama?limit=2&offset=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Total   int                       `json:"total"`
		Records []corpus.NormalizedRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 3, payload.Total)
	require.Len(t, payload.Records, 1)

	rec = doRequest(t, s, http.MethodGet, "/api/records/alabama?limit=0")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRecordsUnknownJurisdiction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/records/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
