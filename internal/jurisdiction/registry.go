package jurisdiction

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry holds the loaded jurisdictions keyed by slug.
type Registry struct {
	bySlug map[string]Jurisdiction
}

type registryFile struct {
	Jurisdictions []Jurisdiction `yaml:"jurisdictions"`
}

// Load parses a registry from YAML bytes.
func Load(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse jurisdiction registry: %w", err)
	}
	if len(file.Jurisdictions) == 0 {
		return nil, fmt.Errorf("jurisdiction registry is empty")
	}
	bySlug := make(map[string]Jurisdiction, len(file.Jurisdictions))
	for _, j := range file.Jurisdictions {
		if err := j.Validate(); err != nil {
			return nil, err
		}
		if _, dup := bySlug[j.Slug]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction slug %q", j.Slug)
		}
		bySlug[j.Slug] = j
	}
	return &Registry{bySlug: bySlug}, nil
}

// LoadFile reads and parses a registry YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jurisdiction registry: %w", err)
	}
	return Load(data)
}

// Get returns the jurisdiction for a slug.
func (r *Registry) Get(slug string) (Jurisdiction, bool) {
	j, ok := r.bySlug[slug]
	return j, ok
}

// Slugs returns all registered slugs in sorted order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.bySlug))
	for slug := range r.bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// All returns all jurisdictions ordered by slug.
func (r *Registry) All() []Jurisdiction {
	all := make([]Jurisdiction, 0, len(r.bySlug))
	for _, slug := range r.Slugs() {
		all = append(all, r.bySlug[slug])
	}
	return all
}

// Len reports how many jurisdictions are registered.
func (r *Registry) Len() int {
	return len(r.bySlug)
}
