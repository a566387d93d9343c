// Package ui colours glyph rows for interactive terminals.
package ui

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/srodi/cachespot/pkg/bands"
	"github.com/srodi/cachespot/pkg/report"
)

// Enabled reports whether w is a terminal that should receive colour.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Palette paints glyph classes.
type Palette struct {
	cold, trace, warm, hot, full *color.Color
}

// NewPalette returns a palette; with enabled false it paints plain text.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		cold:  color.New(color.FgHiBlack),
		trace: color.New(color.FgBlue),
		warm:  color.New(color.FgYellow),
		hot:   color.New(color.FgGreen),
		full:  color.New(color.FgHiGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.cold, p.trace, p.warm, p.hot, p.full} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Palette) colorFor(class int) *color.Color {
	switch {
	case class == 0:
		return p.cold
	case class < 3:
		return p.trace
	case class < 8:
		return p.warm
	case class < 13:
		return p.hot
	default:
		return p.full
	}
}

// Paint renders bins as glyphs, grouping runs of one colour.
func (p *Palette) Paint(bins []bands.Band) string {
	var b strings.Builder
	var run strings.Builder
	var current *color.Color

	flush := func() {
		if run.Len() > 0 {
			b.WriteString(current.Sprint(run.String()))
			run.Reset()
		}
	}
	for _, bin := range bins {
		class := bin.Class()
		c := p.colorFor(class)
		if c != current {
			flush()
			current = c
		}
		run.WriteByte(report.Glyphs[class])
	}
	flush()
	return b.String()
}

// Legend explains every glyph.
func (p *Palette) Legend() string {
	labels := []string{
		"empty", "<0.1%", "<1%",
		"1-10%", "10-20%", "20-30%", "30-40%", "40-50%",
		"50-60%", "60-70%", "70-80%", "80-90%", "90-100%", "full",
	}
	parts := make([]string, 0, len(labels))
	for class, label := range labels {
		parts = append(parts, p.colorFor(class).Sprint(string(report.Glyphs[class]))+" "+label)
	}
	return strings.Join(parts, "  ")
}
