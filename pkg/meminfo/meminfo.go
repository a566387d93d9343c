// Package meminfo reads system page cache totals from /proc/meminfo.
package meminfo

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
)

// procRoot allows tests to point the reader at a fake proc tree.
var procRoot = procfs.DefaultMountPoint

// Info holds the page cache related counters, in bytes.
type Info struct {
	Total   uint64
	Cached  uint64
	Buffers uint64
	Dirty   uint64
}

// CachedRatio is the share of memory holding file pages.
func (i Info) CachedRatio() float64 {
	if i.Total == 0 {
		return 0
	}
	return float64(i.Cached+i.Buffers) / float64(i.Total)
}

// Read parses /proc/meminfo.
func Read() (Info, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return Info{}, fmt.Errorf("opening procfs: %w", err)
	}
	mem, err := fs.Meminfo()
	if err != nil {
		return Info{}, fmt.Errorf("reading meminfo: %w", err)
	}
	if mem.MemTotalBytes == nil {
		return Info{}, errors.New("MemTotal not found in meminfo")
	}
	return Info{
		Total:   *mem.MemTotalBytes,
		Cached:  value(mem.CachedBytes),
		Buffers: value(mem.BuffersBytes),
		Dirty:   value(mem.DirtyBytes),
	}, nil
}

func value(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}
