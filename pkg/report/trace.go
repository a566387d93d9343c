// Package report renders trace snapshots and stats entries.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/srodi/cachespot/pkg/bands"
)

// Glyphs maps a band class 0..13 onto its character.
const Glyphs = ".,~0123456789+"

// StampLayout is the timestamp prefix of a trace line.
const StampLayout = "01-02 15:04:05"

// Dots renders one glyph per bin.
func Dots(bins []bands.Band) string {
	var b strings.Builder
	b.Grow(len(bins))
	for _, bin := range bins {
		b.WriteByte(Glyphs[bin.Class()])
	}
	return b.String()
}

// Painter decorates a glyph row, for example with terminal colours.
type Painter func(bins []bands.Band) string

// TraceLine renders a snapshot as `stamp ratio% [glyphs] size`.
func TraceLine(stamp time.Time, b *bands.Bands, paint Painter) string {
	if paint == nil {
		paint = Dots
	}
	return fmt.Sprintf("%s %5.1f%% [%s] %s",
		stamp.Format(StampLayout), b.Ratio()*100, paint(b.Bins()), Human(b.Aggregate().Limit))
}
