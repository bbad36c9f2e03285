package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// HashMapFile is where the URL to content hash map lives.
const HashMapFile = "content_hashes.json"

// DriftMap tracks the last seen content hash per URL. Single writer;
// reads and writes are serialized internally and written through to disk
// so an interrupted run loses at most nothing.
type DriftMap struct {
	path string

	mu     sync.Mutex
	hashes map[string]string
}

// OpenDriftMap loads the hash map from the store directory, starting
// empty when the file does not exist yet.
func OpenDriftMap(dir string) (*DriftMap, error) {
	path := filepath.Join(dir, HashMapFile)
	hashes := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read hash map %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &hashes); err != nil {
			return nil, fmt.Errorf("parse hash map %s: %w", path, err)
		}
	}
	return &DriftMap{path: path, hashes: hashes}, nil
}

// CheckDrift compares newHash against the stored hash for the URL. It
// returns the old hash only when one exists and differs. In every case
// the map ends up holding newHash, so an immediate recheck with the same
// hash reports no drift.
func (d *DriftMap) CheckDrift(url, newHash string) (string, error) {
	if newHash == "" {
		return "", nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	old, seen := d.hashes[url]
	if seen && old == newHash {
		return "", nil
	}
	d.hashes[url] = newHash
	if err := d.persist(); err != nil {
		return "", err
	}
	if seen {
		return old, nil
	}
	return "", nil
}

// Hash returns the stored hash for a URL.
func (d *DriftMap) Hash(url string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.hashes[url]
	return h, ok
}

// Len reports how many URLs have stored hashes.
func (d *DriftMap) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.hashes)
}

// URLs returns every tracked URL for a jurisdiction-independent recheck.
func (d *DriftMap) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	urls := make([]string, 0, len(d.hashes))
	for u := range d.hashes {
		urls = append(urls, u)
	}
	return urls
}

// persist writes the whole map; callers hold the lock.
func (d *DriftMap) persist() error {
	payload, err := json.MarshalIndent(d.hashes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hash map: %w", err)
	}
	if err := os.WriteFile(d.path, payload, 0o600); err != nil {
		return fmt.Errorf("write hash map %s: %w", d.path, err)
	}
	return nil
}
