// Package bands accumulates resident bytes over a region split into bins.
package bands

import (
	"fmt"

	"github.com/srodi/cachespot/pkg/span"
)

// Band is one bin of a partitioned region.
type Band struct {
	At    uint64
	Limit uint64
	Value uint64
}

// Contains reports whether off falls inside the band.
func (b Band) Contains(off uint64) bool {
	return off >= b.At && off < b.After()
}

// After is the first offset past the band.
func (b Band) After() uint64 {
	return b.At + b.Limit
}

// Empty reports that no byte of the band is resident.
func (b Band) Empty() bool {
	return b.Value == 0
}

// Full reports that every byte of the band is resident.
func (b Band) Full() bool {
	return b.Value >= b.Limit
}

// Usage is Value/Limit, zero for a zero length band.
func (b Band) Usage() float64 {
	if b.Limit == 0 {
		return 0
	}
	return float64(b.Value) / float64(b.Limit)
}

// Class buckets the band fill into 0..13: 0 empty, 13 full, 1 under 0.1%,
// 2 under 1%, otherwise 3 plus the fill decile.
func (b Band) Class() int {
	switch {
	case b.Empty():
		return 0
	case b.Full():
		return 13
	}
	fill := b.Usage()
	switch {
	case fill < 0.001:
		return 1
	case fill < 0.01:
		return 2
	}
	return 3 + int(fill*10)
}

// Inc takes the part of s overlapping the band. s must not start before the band.
func (b *Band) Inc(s *span.Span) {
	if s.At < b.At {
		panic(fmt.Sprintf("bands: span at %d precedes band at %d", s.At, b.At))
	}
	if !b.Contains(s.At) {
		return
	}
	b.Value += s.Advance(b.Limit - (s.At - b.At))
	if b.Value > b.Limit {
		panic(fmt.Sprintf("bands: band at %d overfilled, %d of %d", b.At, b.Value, b.Limit))
	}
}
