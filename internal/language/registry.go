package language

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/conduit-lang/xgen/internal/builderrors"
)

// Setup describes a language implementation the engine can load
type Setup struct {
	ID             string   `mapstructure:"id" yaml:"id"`
	FileExtensions []string `mapstructure:"file_extensions" yaml:"file_extensions,omitempty"`
}

// Registry is the set of setups known to an engine installation. It is
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	setups map[string]Setup
}

// NewRegistry creates a registry holding setups
func NewRegistry(setups ...Setup) (*Registry, error) {
	r := &Registry{setups: make(map[string]Setup)}
	for _, s := range setups {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a setup. Blank and duplicate ids are rejected.
func (r *Registry) Register(s Setup) error {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return fmt.Errorf("setup id must not be blank")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.setups[id]; ok {
		return fmt.Errorf("setup %q already registered", id)
	}
	s.ID = id
	r.setups[id] = s
	return nil
}

// Lookup returns the setup registered under id
func (r *Registry) Lookup(id string) (Setup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.setups[id]
	return s, ok
}

// IDs returns the registered setup ids, sorted
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.setups))
	for id := range r.setups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unknown returns the ids that are not registered, sorted and without
// duplicates
func (r *Registry) Unknown(ids []string) []string {
	seen := make(map[string]struct{})
	var unknown []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := r.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Resolve checks that every handle names a registered setup
func (r *Registry) Resolve(handles map[string]Handle) error {
	ids := make([]string, 0, len(handles))
	for id := range handles {
		ids = append(ids, id)
	}
	if unknown := r.Unknown(ids); len(unknown) > 0 {
		return builderrors.Configurationf("resolve languages", "no language registered for setup %s", strings.Join(unknown, ", "))
	}
	return nil
}

// FilePatterns returns "*.ext" glob patterns for the extensions of the
// given setups, sorted and without duplicates. Unknown setups are ignored.
func (r *Registry) FilePatterns(ids []string) []string {
	seen := make(map[string]struct{})
	for _, id := range ids {
		s, ok := r.Lookup(id)
		if !ok {
			continue
		}
		for _, ext := range s.FileExtensions {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext != "" {
				seen["*."+ext] = struct{}{}
			}
		}
	}
	patterns := make([]string, 0, len(seen))
	for p := range seen {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}
