package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srodi/cachespot/pkg/export"
	"github.com/srodi/cachespot/pkg/meminfo"
	"github.com/srodi/cachespot/pkg/report"
	"github.com/srodi/cachespot/pkg/top"
	"github.com/srodi/cachespot/pkg/types"
	"github.com/srodi/cachespot/pkg/walk"
)

func newStatsCommand(a *app) *cobra.Command {
	var list string

	cmd := &cobra.Command{
		Use:   "stats [DIR]",
		Short: "Report resident bytes of files under a directory",
		Long: `stats walks DIR (default .) depth first and prints, for every file,
how many of its bytes are in the page cache. With --edge N every directory
at depth N is reported as one entry. With --list the paths are read one per
line from the named file, or stdin for "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return a.stats(cmd, root, list)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&list, "list", "l", "", `read paths from this file, "-" for stdin`)
	flags.IntP("edge", "e", 0, "report directories at this depth as a whole")
	flags.BoolP("zeroes", "z", false, "include entries without cached bytes")
	flags.BoolP("summary", "s", false, "print the total over every file")
	flags.BoolP("top", "t", false, "print only the largest entries, at the end")
	flags.IntP("limit", "k", types.DefaultTopK, "number of entries kept by --top")
	flags.Float64P("ratio", "r", 0, "drop entries with a smaller cached share")
	flags.StringP("format", "o", "plain", "output format: plain, table or yaml")
	a.bind("stats.edge", flags.Lookup("edge"))
	a.bind("stats.zeroes", flags.Lookup("zeroes"))
	a.bind("stats.summary", flags.Lookup("summary"))
	a.bind("stats.top", flags.Lookup("top"))
	a.bind("stats.limit", flags.Lookup("limit"))
	a.bind("stats.ratio", flags.Lookup("ratio"))
	a.bind("stats.format", flags.Lookup("format"))
	return cmd
}

func (a *app) stats(cmd *cobra.Command, root, list string) error {
	cfg := a.cfg.Stats
	format, err := a.cfg.StatsFormat()
	if err != nil {
		return err
	}

	var (
		enum walk.Enum
		done = func() error { return nil }
	)
	switch list {
	case "":
		w := walk.NewWalk(root)
		enum, done = w, w.Close
	default:
		in, closeIn, err := openList(cmd.InOrStdin(), list)
		if err != nil {
			return err
		}
		l := walk.NewList(in)
		enum = l
		done = func() error {
			closeIn()
			return errors.Wrap(l.Err(), "reading path list")
		}
		root = ""
	}

	out := report.NewStatsWriter(cmd.OutOrStdout(), format)
	metrics := export.NewTextfile(a.cfg.Metrics.File)

	reducer := top.NewReducer(top.Config{
		Edge:    cfg.Edge,
		Zeroes:  cfg.Zeroes,
		Summary: cfg.Summary,
		Top:     cfg.Top,
		Limit:   cfg.Limit,
		Ratio:   cfg.Ratio,
	}, nil, a.log, func(e top.Entry) {
		if e.Label.Name != top.SummaryName {
			e.Label.Name = filepath.Join(root, e.Label.Name)
		}
		metrics.ObserveEntry(e)
		out.Add(e)
	})

	total := reducer.Run(root, enum)
	if err := done(); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "writing report")
	}

	if cfg.Summary {
		a.logMeminfo(total)
	}
	return metrics.Write()
}

// openList opens the path list; "-" is stdin and is not closed.
func openList(stdin io.Reader, name string) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening path list")
	}
	return f, func() { _ = f.Close() }, nil
}

func (a *app) logMeminfo(total top.Entry) {
	info, err := meminfo.Read()
	if err != nil {
		a.log.WithError(err).Debug("cannot read meminfo")
		return
	}
	fields := logrus.Fields{
		"walked_cached": humanize.IBytes(total.Used),
		"mem_total":     humanize.IBytes(info.Total),
		"cached":        humanize.IBytes(info.Cached),
		"buffers":       humanize.IBytes(info.Buffers),
		"dirty":         humanize.IBytes(info.Dirty),
		"cached_ratio":  info.CachedRatio(),
	}
	if info.Cached > 0 {
		fields["walked_share"] = float64(total.Used) / float64(info.Cached)
	}
	a.log.WithFields(fields).Info("page cache")
}
