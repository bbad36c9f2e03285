package api

import (
	"errors"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// listSummaries handles GET /api/summaries. It returns every persisted
// run summary as {"summaries": [...]}, ordered by jurisdiction slug.
func (s *Server) listSummaries(w http.ResponseWriter, _ *http.Request) {
	summaries, err := s.store.ListSummaries()
	if err != nil {
		s.logger.Error("list summaries failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

// getSummary handles GET /api/summaries/{slug}. 404 when the
// jurisdiction has never completed a run.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	slug, err := parseSlug(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.store.LoadSummary(slug)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "summary not found")
			return
		}
		s.logger.Error("load summary failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// listRecords handles GET /api/records/{slug}?limit=&offset=. The record
// log can run long, so the response is windowed; "total" carries the full
// log length for pagination.
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	slug, err := parseSlug(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset, err := parseLimitOffset(r, defaultRecordLimit, maxRecordLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.ReadRecords(slug)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no records for jurisdiction")
			return
		}
		s.logger.Error("read records failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read records")
		return
	}

	total := len(records)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"records": records[offset:end],
	})
}

func parseSlug(r *http.Request) (string, error) {
	slug := chi.URLParam(r, "slug")
	if !slugPattern.MatchString(slug) {
		return "", errors.New("invalid jurisdiction slug")
	}
	return slug, nil
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}
