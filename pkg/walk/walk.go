// Package walk enumerates files for the stats reducer, either by walking a
// directory tree depth first or by reading a list of paths.
package walk

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/srodi/cachespot/pkg/types"
)

const readBatch = 256

// Ref is one walk event.
type Ref struct {
	Type  types.NodeType
	Depth int
	Name  string
}

// Valid reports whether r carries an event.
func (r Ref) Valid() bool {
	return r.Type != types.Invalid
}

// Above reports whether r is strictly shallower than other.
func (r Ref) Above(other Ref) bool {
	return r.Depth < other.Depth
}

// Enum produces walk events until it returns false.
type Enum interface {
	Next() (Ref, bool)
}

// lister is the part of *os.File a level reads from.
type lister interface {
	ReadDir(n int) ([]fs.DirEntry, error)
	Close() error
}

type level struct {
	name  string
	dir   lister
	batch []fs.DirEntry
}

// next returns the next entry, or nil at the end of the listing. A read
// error other than io.EOF ends the listing and is returned once.
func (l *level) next() (fs.DirEntry, error) {
	for len(l.batch) == 0 {
		if l.dir == nil {
			return nil, nil
		}
		entries, err := l.dir.ReadDir(readBatch)
		if len(entries) == 0 {
			l.close()
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return nil, nil
		}
		l.batch = entries
	}
	entry := l.batch[0]
	l.batch = l.batch[1:]
	return entry, nil
}

func (l *level) close() {
	if l.dir != nil {
		_ = l.dir.Close()
		l.dir = nil
	}
}

// Walk enumerates a directory tree depth first. Names are relative to the
// root; children of the root have depth 1. Links are reported, never followed.
type Walk struct {
	root  string
	stack []*level
	first *Ref
}

// NewWalk starts a walk at root. An unreadable root yields a single access
// event and a regular file root a single file event, both at depth 0.
// A symlinked root is followed; links below it are not.
func NewWalk(root string) *Walk {
	w := &Walk{root: root}

	info, err := os.Stat(root)
	switch {
	case err != nil:
		w.first = &Ref{Type: types.Access, Name: root}
	case !info.IsDir():
		w.first = &Ref{Type: typeOf(info.Mode().Type())}
	default:
		if err := w.push(""); err != nil {
			w.first = &Ref{Type: types.Access, Name: root}
		}
	}
	return w
}

// Root is the directory the walk started at.
func (w *Walk) Root() string {
	return w.root
}

// Next returns the next event.
func (w *Walk) Next() (Ref, bool) {
	if w.first != nil {
		ref := *w.first
		w.first = nil
		return ref, true
	}

	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		depth := len(w.stack)

		entry, err := top.next()
		if err != nil {
			// the directory could not be listed to the end
			ref := Ref{Type: types.Access, Depth: depth - 1, Name: w.rel("")}
			w.stack = w.stack[:len(w.stack)-1]
			return ref, true
		}
		if entry == nil {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}

		rel := w.rel(entry.Name())
		if entry.IsDir() {
			if err := w.push(entry.Name()); err != nil {
				return Ref{Type: types.Access, Depth: depth, Name: rel}, true
			}
			return Ref{Type: types.Dir, Depth: depth, Name: rel}, true
		}
		return Ref{Type: typeOf(entry.Type()), Depth: depth, Name: rel}, true
	}
	return Ref{}, false
}

// Close releases every directory still open.
func (w *Walk) Close() error {
	for _, l := range w.stack {
		l.close()
	}
	w.stack = nil
	return nil
}

func (w *Walk) push(name string) error {
	path := filepath.Join(w.root, w.rel(name))
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	w.stack = append(w.stack, &level{name: name, dir: dir})
	return nil
}

// rel joins the names of every open level below the root with name.
func (w *Walk) rel(name string) string {
	parts := make([]string, 0, len(w.stack)+1)
	for i, l := range w.stack {
		if i == 0 {
			continue
		}
		parts = append(parts, l.name)
	}
	parts = append(parts, name)
	return filepath.Join(parts...)
}

func typeOf(mode fs.FileMode) types.NodeType {
	switch {
	case mode.IsRegular():
		return types.File
	case mode&fs.ModeDir != 0:
		return types.Dir
	case mode&fs.ModeSymlink != 0:
		return types.Link
	default:
		return types.Other
	}
}
