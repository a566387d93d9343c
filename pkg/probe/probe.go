// Package probe scans a mapped region for resident pages and reports them as
// coalesced spans.
package probe

import (
	"github.com/pkg/errors"

	"github.com/srodi/cachespot/pkg/bands"
	"github.com/srodi/cachespot/pkg/span"
)

// DefaultChunkPages bounds how many page flags are queried at once.
const DefaultChunkPages = 64 * 1024

// Region is a mapped byte range whose page residency can be queried.
type Region interface {
	Len() uint64
	PageSize() uint64
	// Residency fills vec with one flag per page of [off, off+length); bit 0 marks a resident page.
	Residency(off, length uint64, vec []byte) error
}

// Probe owns the flag buffer reused across chunks and regions.
// It is not safe for concurrent use.
type Probe struct {
	vec []byte
}

// New returns a probe querying DefaultChunkPages pages per call.
func New() *Probe {
	return NewWithChunk(DefaultChunkPages)
}

// NewWithChunk returns a probe querying at most pages pages per call.
func NewWithChunk(pages int) *Probe {
	if pages <= 0 {
		pages = DefaultChunkPages
	}
	return &Probe{vec: make([]byte, pages)}
}

// Granule returns the page rounded geometry of r.
func Granule(r Region) span.Granule {
	return span.NewGranule(r.PageSize(), r.Len())
}

// Scan calls fn with every maximal run of resident pages in r, in offset order.
func (p *Probe) Scan(r Region, fn func(span.Span)) error {
	g := Granule(r)
	items := uint64(len(p.vec))
	acc := span.New(0, 0)

	for page := uint64(0); page < g.Pages; page += items {
		chunk := min(g.Pages-page, items)
		bytes := chunk * g.Size

		if err := r.Residency(page*g.Size, bytes, p.vec[:chunk]); err != nil {
			return errors.Wrap(err, "querying page residency")
		}
		for z := uint64(0); z < chunk; z++ {
			if p.vec[z]&0x01 == 0 {
				continue
			}
			s := span.New((page+z)*g.Size, g.Size)
			if !acc.Join(s) {
				if !acc.Empty() {
					fn(acc)
				}
				acc = s
			}
		}
	}
	if !acc.Empty() {
		fn(acc)
	}
	return nil
}

// Feed scans r straight into f.
func (p *Probe) Feed(r Region, f bands.Feeder) error {
	return p.Scan(r, func(s span.Span) {
		f.Feed(&s)
	})
}

// Count returns the resident and total page rounded byte counts of r.
func (p *Probe) Count(r Region) (used, total uint64, err error) {
	sum := bands.NewSum(Granule(r).Paged())
	if err := p.Feed(r, sum); err != nil {
		return 0, 0, err
	}
	return sum.Used(), sum.Total(), nil
}
