package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/srodi/cachespot/pkg/top"
)

// Format selects how stats entries are written.
type Format string

const (
	FormatPlain Format = "plain"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ErrFormat is returned for an unknown output format.
var ErrFormat = errors.New("report: unknown format")

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatTable, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrFormat, name)
}

// StatsLine renders an entry as `used of size depth path`.
func StatsLine(e top.Entry) string {
	return fmt.Sprintf("%5s of %5s %2d %s", Human(e.Used), Human(e.Size), e.Label.Depth, e.Label.Name)
}

// Row is the structured form of a stats entry.
type Row struct {
	Path  string  `yaml:"path"`
	Depth int     `yaml:"depth"`
	Used  uint64  `yaml:"used"`
	Size  uint64  `yaml:"size"`
	Ratio float64 `yaml:"ratio"`
}

// NewRow converts an entry.
func NewRow(e top.Entry) Row {
	return Row{Path: e.Label.Name, Depth: e.Label.Depth, Used: e.Used, Size: e.Size, Ratio: e.Ratio()}
}

// StatsWriter writes entries as they arrive (plain) or buffers them until Flush.
type StatsWriter struct {
	w      io.Writer
	format Format
	rows   []Row
	err    error
}

// NewStatsWriter writes entries to w in format.
func NewStatsWriter(w io.Writer, format Format) *StatsWriter {
	return &StatsWriter{w: w, format: format}
}

// Add records one entry. Write errors are kept and returned by Flush.
func (s *StatsWriter) Add(e top.Entry) {
	if s.format != FormatPlain {
		s.rows = append(s.rows, NewRow(e))
		return
	}
	if s.err == nil {
		_, s.err = fmt.Fprintln(s.w, StatsLine(e))
	}
}

// Flush writes buffered entries and returns the first write error.
func (s *StatsWriter) Flush() error {
	if s.err != nil {
		return s.err
	}
	switch s.format {
	case FormatTable:
		_, s.err = fmt.Fprintln(s.w, renderTable(s.rows))
	case FormatYAML:
		enc := yaml.NewEncoder(s.w)
		enc.SetIndent(2)
		if err := enc.Encode(s.rows); err != nil {
			s.err = err
		} else {
			s.err = enc.Close()
		}
	}
	s.rows = nil
	return s.err
}

func renderTable(rows []Row) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Used", "Size", "Cached", "Depth", "Path"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			humanize.IBytes(r.Used),
			humanize.IBytes(r.Size),
			fmt.Sprintf("%.1f%%", r.Ratio*100),
			r.Depth,
			r.Path,
		})
	}
	tw.SetStyle(table.StyleLight)
	return tw.Render()
}
