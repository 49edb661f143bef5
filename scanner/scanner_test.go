package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))
	}
}

func TestScan(t *testing.T) {
	tests := map[string]struct {
		files []string
		exp   []string
	}{
		"Hidden directories should be skipped": {
			files: []string{"a.txt", ".hidden/b.txt"},
			exp:   []string{"a.txt"},
		},
		"Nested files should be returned sorted with slash separators": {
			files: []string{"subdir/file2.py", "file1.txt", "b/z.go", "b/a.go"},
			exp:   []string{"b/a.go", "b/z.go", "file1.txt", "subdir/file2.py"},
		},
		"Hidden files at any depth should be skipped": {
			files: []string{".env", "src/.cache", "src/main.go", "src/.git/HEAD"},
			exp:   []string{"src/main.go"},
		},
		"Empty directories produce no entries": {
			files: nil,
			exp:   []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, test.files...)
			require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

			got := New(root).Scan()
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestScanNeverReturnsHiddenComponents(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"docs/readme.md", "docs/.draft/notes.md", ".github/workflows/ci.yml",
		"pkg/a/b/c.go", "pkg/a/.b/d.go", "pkg/.x",
	)

	got := New(root).Scan()
	for _, p := range got {
		for _, part := range strings.Split(p, "/") {
			assert.False(t, strings.HasPrefix(part, "."), "hidden component in %q", p)
		}
	}
	assert.True(t, sort.StringsAreSorted(got))
	assert.Equal(t, []string{"docs/readme.md", "pkg/a/b/c.go"}, got)
}

func TestScanMissingRoot(t *testing.T) {
	assert.Empty(t, New(filepath.Join(t.TempDir(), "nope")).Scan())
	assert.Empty(t, New("").Scan())

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Empty(t, New(file).Scan())
}

func TestScanFollowsSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.txt", "sub/b.txt")
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	s := New(link)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, s.Scan())
	assert.Equal(t, link, s.Root())
	assert.Equal(t, filepath.Join(link, "a.txt"), s.Resolve("a.txt"))
}

func TestScanSkipsDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")
	target := t.TempDir()
	writeTree(t, target, "inside.txt")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "filelink")))

	assert.Equal(t, []string{"a.txt", "filelink"}, New(root).Scan())
}

func TestScanIsNotCached(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")
	s := New(root)
	assert.Equal(t, []string{"a.txt"}, s.Scan())

	writeTree(t, root, "b.txt")
	assert.Equal(t, []string{"a.txt", "b.txt"}, s.Scan())
}

func TestSetRootAndResolve(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTree(t, first, "one.txt")
	writeTree(t, second, "dir/two.txt")

	s := New(first)
	assert.Equal(t, filepath.Join(first, "one.txt"), s.Resolve("one.txt"))

	s.SetRoot(second)
	assert.Equal(t, second, s.Root())
	assert.Equal(t, []string{"dir/two.txt"}, s.Scan())
	assert.Equal(t, filepath.Join(second, "dir", "two.txt"), s.Resolve("dir/two.txt"))
}

func TestFilter(t *testing.T) {
	files := []string{"README.md", "cmd/main.go", "docs/readme-ko.md", "main_test.go"}

	assert.Equal(t, []string{"README.md", "docs/readme-ko.md"}, Filter(files, "readme"))
	assert.Equal(t, []string{"cmd/main.go", "main_test.go"}, Filter(files, "MAIN"))
	assert.Equal(t, files, Filter(files, ""))
	assert.Empty(t, Filter(files, "zzz"))
}
