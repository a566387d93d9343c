// Package span holds the contiguous byte range primitive shared by the probe
// and the bands accumulator.
package span

// Span is a contiguous byte range awaiting consumption.
type Span struct {
	At    uint64
	Bytes uint64
}

// New returns a span starting at at and covering bytes.
func New(at, bytes uint64) Span {
	return Span{At: at, Bytes: bytes}
}

// Empty reports whether nothing is left in the span.
func (s Span) Empty() bool {
	return s.Bytes == 0
}

// After is the first offset past the span.
func (s Span) After() uint64 {
	return s.At + s.Bytes
}

// Advance consumes up to n bytes from the front and returns how many were taken.
func (s *Span) Advance(n uint64) uint64 {
	n = min(n, s.Bytes)

	s.At += n
	s.Bytes -= n

	return n
}

// Join appends other when it starts exactly where s ends.
// On failure neither span is modified.
func (s *Span) Join(other Span) bool {
	if s.After() != other.At {
		return false
	}
	s.Bytes += other.Bytes
	return true
}

// Granule describes a byte length rounded up to whole pages.
type Granule struct {
	Size  uint64 // page size
	Pages uint64
	Bytes uint64
}

// NewGranule rounds bytes up to pages of the given size.
func NewGranule(size, bytes uint64) Granule {
	if size == 0 {
		panic("span: zero granule size")
	}
	return Granule{
		Size:  size,
		Pages: (bytes + size - 1) / size,
		Bytes: bytes,
	}
}

// Paged is the byte length covered by whole pages.
func (g Granule) Paged() uint64 {
	return g.Pages * g.Size
}
