package walk

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/srodi/cachespot/pkg/types"
)

// List turns newline separated paths into walk events. Depth is the number
// of path components; paths that cannot be stat'ed become access events.
type List struct {
	scan *bufio.Scanner
}

// NewList reads paths from r.
func NewList(r io.Reader) *List {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &List{scan: scan}
}

// Next returns the event for the next non-empty line. Listed links are followed.
func (l *List) Next() (Ref, bool) {
	for l.scan.Scan() {
		name := strings.TrimRight(l.scan.Text(), "\r")
		if name == "" {
			continue
		}
		ref := Ref{Depth: Depth(name), Name: name}
		info, err := os.Stat(name)
		if err != nil {
			ref.Type = types.Access
		} else {
			ref.Type = typeOf(info.Mode().Type())
		}
		return ref, true
	}
	return Ref{}, false
}

// Err is the first read error of the underlying stream.
func (l *List) Err() error {
	return l.scan.Err()
}

// Depth counts the components of a path.
func Depth(path string) int {
	clean := strings.Trim(filepath.ToSlash(filepath.Clean(path)), "/")
	if clean == "" || clean == "." {
		return 0
	}
	return strings.Count(clean, "/") + 1
}
