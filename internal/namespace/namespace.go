// Package namespace maintains the shared name -> location index the
// generation engine uses to resolve cross-module references.
package namespace

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Entry is one registered name and its location URI
type Entry struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Namespace maps a module's symbolic name to its location URI. It is safe
// for concurrent use.
type Namespace struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty namespace
func New() *Namespace {
	return &Namespace{entries: make(map[string]string)}
}

// Put registers name at location. Registering the same pair twice is a
// no-op; registering a different location overwrites the previous one.
// It reports whether an existing, different location was replaced.
func (n *Namespace) Put(name, location string) (replaced bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev, ok := n.entries[name]
	if ok && prev == location {
		return false
	}
	n.entries[name] = location
	return ok
}

// Lookup returns the location registered for name
func (n *Namespace) Lookup(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	loc, ok := n.entries[name]
	return loc, ok
}

// Len returns the number of registered names
func (n *Namespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}

// Entries returns a snapshot of the namespace sorted by name
func (n *Namespace) Entries() []Entry {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Entry, 0, len(n.entries))
	for name, loc := range n.entries {
		out = append(out, Entry{Name: name, Location: loc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DirURI returns the file URI of a directory, with a trailing slash
func DirURI(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		// windows drive paths
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
