package walk

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/cachespot/pkg/types"
)

func drain(e Enum) []Ref {
	var refs []Ref
	for {
		ref, ok := e.Next()
		if !ok {
			return refs
		}
		refs = append(refs, ref)
	}
}

func mkfile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestWalkDepthsAndNames(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "top.txt"))
	mkfile(t, filepath.Join(root, "a", "b", "deep.txt"))
	require.NoError(t, os.Symlink("top.txt", filepath.Join(root, "link")))

	w := NewWalk(root)
	defer w.Close()
	refs := drain(w)

	got := map[string]Ref{}
	for _, r := range refs {
		got[r.Name] = r
	}
	assert.Equal(t, Ref{Type: types.File, Depth: 1, Name: "top.txt"}, got["top.txt"])
	assert.Equal(t, Ref{Type: types.Dir, Depth: 1, Name: "a"}, got["a"])
	assert.Equal(t, Ref{Type: types.Dir, Depth: 2, Name: filepath.Join("a", "b")}, got[filepath.Join("a", "b")])
	assert.Equal(t, Ref{Type: types.File, Depth: 3, Name: filepath.Join("a", "b", "deep.txt")}, got[filepath.Join("a", "b", "deep.txt")])
	assert.Equal(t, types.Link, got["link"].Type)
	assert.Len(t, refs, 5)
}

func TestWalkIsDepthFirst(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a", "1"))
	mkfile(t, filepath.Join(root, "a", "2"))
	mkfile(t, filepath.Join(root, "b", "3"))

	refs := drain(NewWalk(root))

	// every file must directly follow its directory or a sibling
	var current string
	for _, r := range refs {
		switch r.Type {
		case types.Dir:
			current = r.Name
		case types.File:
			assert.True(t, strings.HasPrefix(r.Name, current+string(filepath.Separator)), "%s outside %s", r.Name, current)
		}
	}
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	mkfile(t, filepath.Join(root, "ok"))

	refs := drain(NewWalk(root))
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	require.Len(t, refs, 2)
	assert.Equal(t, Ref{Type: types.Access, Depth: 1, Name: "locked"}, refs[0])
	assert.Equal(t, types.File, refs[1].Type)
}

func TestWalkMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")

	refs := drain(NewWalk(root))
	assert.Equal(t, []Ref{{Type: types.Access, Depth: 0, Name: root}}, refs)
}

func TestWalkFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single")
	mkfile(t, path)

	refs := drain(NewWalk(path))
	assert.Equal(t, []Ref{{Type: types.File}}, refs)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	mkfile(t, file)

	input := file + "\n\n" + dir + "\r\n" + filepath.Join(dir, "missing") + "\n"
	l := NewList(strings.NewReader(input))
	refs := drain(l)
	require.NoError(t, l.Err())

	require.Len(t, refs, 3)
	assert.Equal(t, Ref{Type: types.File, Depth: Depth(file), Name: file}, refs[0])
	assert.Equal(t, types.Dir, refs[1].Type)
	assert.Equal(t, dir, refs[1].Name)
	assert.Equal(t, types.Access, refs[2].Type)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 3, Depth("/var/log/syslog"))
	assert.Equal(t, 2, Depth("a/b"))
	assert.Equal(t, 1, Depth("a/"))
	assert.Equal(t, 0, Depth("/"))
	assert.Equal(t, 0, Depth("."))
}

func TestRefAbove(t *testing.T) {
	a := Ref{Type: types.Dir, Depth: 2}
	assert.True(t, a.Above(Ref{Depth: 3}))
	assert.False(t, a.Above(Ref{Depth: 2}))
	assert.False(t, Ref{}.Valid())
}

func TestWalkFollowsSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	mkfile(t, filepath.Join(target, "f"))
	require.NoError(t, os.Symlink(filepath.Join(target, "inner"), filepath.Join(target, "dangling")))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	refs := drain(NewWalk(link))
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	assert.Equal(t, []Ref{
		{Type: types.Link, Depth: 1, Name: "dangling"},
		{Type: types.File, Depth: 1, Name: "f"},
	}, refs)
}

func TestListFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	mkfile(t, file)
	link := filepath.Join(dir, "l")
	require.NoError(t, os.Symlink(file, link))

	refs := drain(NewList(strings.NewReader(link + "\n")))
	assert.Equal(t, []Ref{{Type: types.File, Depth: Depth(link), Name: link}}, refs)
}

type failingDir struct {
	batches [][]fs.DirEntry
	err     error
}

func (d *failingDir) ReadDir(int) ([]fs.DirEntry, error) {
	if len(d.batches) == 0 {
		return nil, d.err
	}
	batch := d.batches[0]
	d.batches = d.batches[1:]
	return batch, nil
}

func (d *failingDir) Close() error { return nil }

func TestWalkReportsListingError(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "f"))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	w := &Walk{root: root}
	w.stack = append(w.stack,
		&level{dir: &failingDir{err: io.EOF}},
		&level{name: "sub", dir: &failingDir{batches: [][]fs.DirEntry{entries}, err: errors.New("input/output error")}},
	)

	assert.Equal(t, []Ref{
		{Type: types.File, Depth: 2, Name: filepath.Join("sub", "f")},
		{Type: types.Access, Depth: 1, Name: "sub"},
	}, drain(w))
}
