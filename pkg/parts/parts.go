// Package parts splits a length into contiguous, gap-free parts.
package parts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoParts is returned when a partition of zero parts is requested.
var ErrNoParts = errors.New("parts: part count must be positive")

// ErrPolicy is returned for an unknown policy name.
var ErrPolicy = errors.New("parts: unknown policy")

// Policy decides how the remainder of an uneven split is distributed.
type Policy int

const (
	// Equal spreads the remainder over the earliest parts so lengths differ by at most one.
	Equal Policy = iota
	// Tailed gives every part the same length except the last, which takes what is left.
	Tailed
)

func (p Policy) String() string {
	switch p {
	case Equal:
		return "equal"
	case Tailed:
		return "tailed"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration name onto a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "equal", "":
		return Equal, nil
	case "tailed":
		return Tailed, nil
	}
	return 0, fmt.Errorf("%w %q", ErrPolicy, name)
}

// Partition is a split of total into parts under a Policy.
type Partition struct {
	policy Policy
	total  uint64
	limit  uint64
	edge   uint64
}

// New prepares a split of total into parts. When parts >= total every part is one unit long.
func New(policy Policy, total, parts uint64) (Partition, error) {
	if parts == 0 {
		return Partition{}, ErrNoParts
	}
	if policy != Equal && policy != Tailed {
		return Partition{}, fmt.Errorf("%w %d", ErrPolicy, int(policy))
	}

	p := Partition{policy: policy, total: total, limit: 1}
	if parts < total {
		p.limit = (total + parts - 1) / parts
	}
	if policy == Equal {
		// offset where full size parts stop
		p.edge = p.limit * (total - parts*(p.limit-1))
	}
	return p, nil
}

// Policy returns the remainder policy of the partition.
func (p Partition) Policy() Policy {
	return p.policy
}

// Total is the length being split.
func (p Partition) Total() uint64 {
	return p.total
}

// Limit is the nominal (largest) part length.
func (p Partition) Limit() uint64 {
	return p.limit
}

// Advance returns the length of the part starting at off.
func (p Partition) Advance(off uint64) uint64 {
	if p.policy == Tailed {
		return min(p.total-off, p.limit)
	}
	if off >= p.edge {
		return p.limit - 1
	}
	return p.limit
}

// Each calls fn for every part in order and returns the nominal part length.
func (p Partition) Each(fn func(seq int, at, length uint64)) uint64 {
	var off uint64
	seq := 0
	for off < p.total {
		step := p.Advance(off)
		if step == 0 {
			panic(fmt.Sprintf("parts: zero length part at %d of %d", off, p.total))
		}
		fn(seq, off, step)
		off += step
		seq++
	}
	if off != p.total {
		panic(fmt.Sprintf("parts: covered %d bytes, want %d", off, p.total))
	}
	return p.limit
}

// Lengths returns the part lengths in order.
func (p Partition) Lengths() []uint64 {
	var out []uint64
	p.Each(func(_ int, _, length uint64) {
		out = append(out, length)
	})
	return out
}
