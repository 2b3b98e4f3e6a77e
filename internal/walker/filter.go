package walker

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDirs are never descended into, whatever the patterns say.
var skipDirs = map[string]bool{
	".git":         true,
	".docqa":       true,
	".venv":        true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
}

// Filter selects documents by glob pattern. Patterns are matched against
// the slash-separated path relative to the walk root and against the base
// name, so "*.pdf" and "**/*.pdf" behave the same. Exclude wins over
// Include; an empty Include accepts everything.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and returns a Filter.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compile(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compile(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compile(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("walker: pattern %q: %w", p, doublestar.ErrBadPattern)
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether the file at relPath should be ingested.
func (f *Filter) Match(relPath string) bool {
	rel := filepath.ToSlash(relPath)
	if matchAny(rel, f.exclude) {
		return false
	}
	return len(f.include) == 0 || matchAny(rel, f.include)
}

// SkipDir reports whether the directory at relPath should be pruned.
func (f *Filter) SkipDir(relPath string) bool {
	rel := filepath.ToSlash(relPath)
	return skipDirs[path.Base(rel)] || matchAny(rel, f.exclude)
}

func matchAny(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
