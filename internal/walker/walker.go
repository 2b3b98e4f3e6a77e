package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DefaultMaxFileSize is the largest document Walk returns (64 MB).
const DefaultMaxFileSize int64 = 64 << 20

// File is a document found by Walk.
type File struct {
	Path    string // Path on disk, rooted like the walk root.
	RelPath string // Slash-separated path relative to the walk root.
	Size    int64
}

// Options controls Walk.
type Options struct {
	Include     []string
	Exclude     []string
	MaxFileSize int64 // 0 uses DefaultMaxFileSize.
	// Accept filters files after the patterns, e.g. by extension. nil
	// accepts every regular file.
	Accept func(path string) bool
}

// Walk returns every regular file under root that passes the filters,
// sorted by relative path. Unreadable entries and oversized files are
// skipped rather than failing the walk.
func Walk(root string, opts Options) ([]File, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	filter, err := NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !filter.Match(rel) {
			return nil
		}
		if opts.Accept != nil && !opts.Accept(p) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}
		files = append(files, File{Path: p, RelPath: filepath.ToSlash(rel), Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
