package bands

import (
	"fmt"

	"github.com/srodi/cachespot/pkg/parts"
	"github.com/srodi/cachespot/pkg/span"
)

// Bands is a gap-free ordered set of bins plus one aggregate band over the region.
type Bands struct {
	limit uint64
	all   Band
	bins  []Band
}

// New splits a region of size bytes into at most slots bins.
func New(policy parts.Policy, size uint64, slots int) (*Bands, error) {
	if slots <= 0 {
		return nil, parts.ErrNoParts
	}
	p, err := parts.New(policy, size, uint64(slots))
	if err != nil {
		return nil, err
	}

	b := &Bands{
		all:  Band{At: 0, Limit: size},
		bins: make([]Band, 0, min(uint64(slots), size)),
	}
	b.limit = p.Each(func(_ int, at, length uint64) {
		b.bins = append(b.bins, Band{At: at, Limit: length})
	})
	return b, nil
}

// Aggregate returns the band spanning the whole region.
func (b *Bands) Aggregate() Band {
	return b.all
}

// Bins returns the per-bin bands in offset order.
func (b *Bands) Bins() []Band {
	return b.bins
}

// Len is the number of bins.
func (b *Bands) Len() int {
	return len(b.bins)
}

// Ratio is the resident share of the whole region.
func (b *Bands) Ratio() float64 {
	return b.all.Usage()
}

// Compatible reports whether other has the same shape and can be diffed against b.
func (b *Bands) Compatible(other *Bands) bool {
	return len(b.bins) == len(other.bins) && b.all.Limit == other.all.Limit
}

// Feed consumes s into the aggregate and every bin it overlaps.
// A span reaching past the region end is a programming error.
func (b *Bands) Feed(s *span.Span) {
	if s.Empty() {
		return
	}

	whole := *s
	b.all.Inc(&whole)
	if !whole.Empty() {
		panic(fmt.Sprintf("bands: span [%d,%d) exceeds region of %d bytes", s.At, s.After(), b.all.Limit))
	}

	// bins past the edge are one byte shorter, so the direct index is a lower bound
	i := int(s.At / b.limit)
	for i < len(b.bins) && !b.bins[i].Contains(s.At) {
		i++
	}
	for ; !s.Empty() && i < len(b.bins); i++ {
		b.bins[i].Inc(s)
	}

	if !s.Empty() {
		panic(fmt.Sprintf("bands: %d bytes at %d left unconsumed", s.Bytes, s.At))
	}
}
