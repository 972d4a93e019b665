// Package sources discovers the model files under a module's source roots.
package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"
)

// Matcher selects files by base name against include patterns and by
// slash-separated path against exclude patterns
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles the include and exclude patterns. An empty include
// list matches every file.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile include pattern %q: %w", p, err)
		}
		m.include = append(m.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile exclude pattern %q: %w", p, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// Excluded reports whether rel, a path relative to a source root, matches
// an exclude pattern
func (m *Matcher) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range m.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Included reports whether the file name matches an include pattern
func (m *Matcher) Included(name string) bool {
	if len(m.include) == 0 {
		return true
	}
	base := filepath.Base(name)
	for _, g := range m.include {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Match reports whether the file at rel is a source file
func (m *Matcher) Match(rel string) bool {
	return m.Included(rel) && !m.Excluded(rel)
}

// Discover walks roots and returns the matching files, sorted and without
// duplicates. Roots that do not exist are skipped.
func Discover(roots []string, m *Matcher) ([]string, error) {
	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if d.IsDir() {
				if rel != "." && m.Excluded(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if m.Match(rel) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk source root %s: %w", root, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
