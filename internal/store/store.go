// Package store persists the harvested corpus: append-only JSONL record
// logs, per-run summaries, and the content hash map behind drift
// detection. Everything lives in one directory of flat files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/corpus"
)

// CombinedLog is the cross-jurisdiction record log.
const CombinedLog = "all.jsonl"

// Store owns the corpus directory. One Store per process; appends are
// serialized internally.
type Store struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	files map[string]*os.File
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		logger: logger,
		files:  make(map[string]*os.File),
	}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string {
	return s.dir
}

// Append writes the record to the jurisdiction log and the combined log.
// Records are never updated or deleted; re-running a jurisdiction appends
// a fresh generation.
func (s *Store) Append(rec corpus.NormalizedRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendLine(rec.JurisdictionID+".jsonl", line); err != nil {
		return err
	}
	return s.appendLine(CombinedLog, line)
}

// AppendCase writes a case record to the jurisdiction's case log.
func (s *Store) AppendCase(rec corpus.CaseRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal case record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(rec.JurisdictionID+"_cases.jsonl", line)
}

func (s *Store) appendLine(name string, line []byte) error {
	f, err := s.open(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return nil
}

func (s *Store) open(name string) (*os.File, error) {
	if f, ok := s.files[name]; ok {
		return f, nil
	}
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	s.files[name] = f
	return f, nil
}

// WriteSummary replaces the jurisdiction's run summary.
func (s *Store) WriteSummary(summary corpus.RunSummary) error {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(s.dir, summary.Jurisdiction+"_summary.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

// LoadSummary reads one jurisdiction's latest run summary.
func (s *Store) LoadSummary(slug string) (corpus.RunSummary, error) {
	path := filepath.Join(s.dir, slug+"_summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return corpus.RunSummary{}, fmt.Errorf("read summary %s: %w", path, err)
	}
	var summary corpus.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return corpus.RunSummary{}, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return summary, nil
}

// ListSummaries returns every persisted run summary, ordered by slug.
func (s *Store) ListSummaries() ([]corpus.RunSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var summaries []corpus.RunSummary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_summary.json") {
			continue
		}
		summary, err := s.LoadSummary(strings.TrimSuffix(name, "_summary.json"))
		if err != nil {
			s.logger.Warn("skipping unreadable summary", zap.String("file", name), zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Jurisdiction < summaries[j].Jurisdiction
	})
	return summaries, nil
}

// ReadRecords loads a jurisdiction's full record log. Intended for tests
// and the offline tooling, not the hot path.
func (s *Store) ReadRecords(slug string) ([]corpus.NormalizedRecord, error) {
	path := filepath.Join(s.dir, slug+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	var records []corpus.NormalizedRecord
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec corpus.NormalizedRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse log line: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close flushes and closes every open log file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for name, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close log %s: %w", name, err)
		}
		delete(s.files, name)
	}
	return firstErr
}
