// Package scanner lists the files of a reference directory for
// file-reference autocompletion.
//
// Results are never cached: every Scan walks the tree again, so the
// directory is expected to be small.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner walks a root directory.
type Scanner struct {
	root string
}

// New returns a scanner rooted at dir. An empty dir is allowed and
// produces empty scans until SetRoot is called.
func New(dir string) *Scanner {
	s := &Scanner{}
	s.SetRoot(dir)
	return s
}

// Root returns the absolute root directory, or "" if unset.
func (s *Scanner) Root() string {
	return s.root
}

// SetRoot changes the directory used by subsequent scans.
func (s *Scanner) SetRoot(dir string) {
	if dir == "" {
		s.root = ""
		return
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s.root = filepath.Clean(dir)
}

// Scan returns every non-hidden file below the root as a slash-separated
// relative path, sorted lexicographically. Any path with a component
// starting with "." is excluded, and so are symlinks to directories.
// A symlinked root is followed. A missing root yields an empty list.
func (s *Scanner) Scan() []string {
	if s.root == "" {
		return []string{}
	}
	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return []string{}
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return []string{}
	}

	files := []string{}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if path == root {
			return err
		}
		if err != nil {
			// Unreadable subtree: skip it, keep walking.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	sort.Strings(files)
	return files
}

// Resolve joins a relative path returned by Scan back onto the root.
func (s *Scanner) Resolve(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Filter keeps the paths containing query, case-insensitively, in their
// original order. An empty query keeps everything.
func Filter(files []string, query string) []string {
	q := strings.ToLower(query)
	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), q) {
			out = append(out, f)
		}
	}
	return out
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
