package bands

import (
	"fmt"

	"github.com/srodi/cachespot/pkg/parts"
	"github.com/srodi/cachespot/pkg/span"
)

// Kind selects what a probe does with each resident span.
type Kind int

const (
	// KindSum only counts resident bytes.
	KindSum Kind = iota
	// KindBands distributes resident bytes over bins.
	KindBands
)

// Feeder consumes resident spans of one region.
type Feeder interface {
	Feed(s *span.Span)
	Used() uint64
	Total() uint64
}

// Sum counts resident bytes of a region.
type Sum struct {
	total uint64
	used  uint64
}

// NewSum returns a counter for a region of total bytes.
func NewSum(total uint64) *Sum {
	return &Sum{total: total}
}

// Feed adds the span length and consumes it.
func (s *Sum) Feed(sp *span.Span) {
	s.used += sp.Advance(sp.Bytes)
}

// Used is the resident byte count.
func (s *Sum) Used() uint64 { return s.used }

// Total is the region size.
func (s *Sum) Total() uint64 { return s.total }

// Used is the resident byte count of the aggregate band.
func (b *Bands) Used() uint64 { return b.all.Value }

// Total is the region size.
func (b *Bands) Total() uint64 { return b.all.Limit }

// Shape fixes how a KindBands feeder splits its region.
type Shape struct {
	Policy parts.Policy
	Slots  int
}

// NewFeeder builds the feeder for kind over a region of total bytes.
func NewFeeder(kind Kind, total uint64, shape Shape) (Feeder, error) {
	switch kind {
	case KindSum:
		return NewSum(total), nil
	case KindBands:
		b, err := New(shape.Policy, total, shape.Slots)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("bands: unknown feeder kind %d", int(kind))
}
