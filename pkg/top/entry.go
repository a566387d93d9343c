// Package top reduces per-file residency into a report while a directory
// tree is walked.
package top

import (
	"fmt"

	"github.com/srodi/cachespot/pkg/walk"
)

// Entry is the residency of one file or one aggregated subtree.
type Entry struct {
	Used  uint64
	Size  uint64
	Label walk.Ref
}

// Valid reports whether the entry carries a label.
func (e Entry) Valid() bool {
	return e.Label.Valid()
}

// Ratio is Used/Size, treated as full when Size is zero or fully used.
func (e Entry) Ratio() float64 {
	if e.Size == 0 || e.Size == e.Used {
		return 1.0
	}
	return float64(e.Used) / float64(e.Size)
}

// Add merges a deeper entry into e.
func (e *Entry) Add(other Entry) {
	if !e.Label.Above(other.Label) {
		panic(fmt.Sprintf("top: merge of depth %d into depth %d", other.Label.Depth, e.Label.Depth))
	}
	e.Used += other.Used
	e.Size += other.Size
}
