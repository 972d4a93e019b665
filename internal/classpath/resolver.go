// Package classpath assembles the classpath handed to the generation engine.
package classpath

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Resolve returns the ordered, duplicate-free classpath built from raw.
//
// Entries equal to one of excludeDirs are dropped, as are entries that are
// blank after trimming and, when filter is non-nil, entries matching filter.
// Paths are compared in their cleaned form so trailing separators do not
// defeat deduplication or exclusion. Survivors keep first-seen order, which
// the engine relies on for first-match-wins symbol resolution.
func Resolve(raw []string, excludeDirs []string, filter *regexp.Regexp) []string {
	excluded := make(map[string]struct{}, len(excludeDirs))
	for _, dir := range excludeDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		excluded[filepath.Clean(dir)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		entry = filepath.Clean(entry)
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}

		if _, ok := excluded[entry]; ok {
			continue
		}
		if filter != nil && filter.MatchString(entry) {
			continue
		}
		result = append(result, entry)
	}
	return result
}
