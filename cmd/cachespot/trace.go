package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srodi/cachespot/pkg/export"
	"github.com/srodi/cachespot/pkg/monit"
	"github.com/srodi/cachespot/pkg/report"
	"github.com/srodi/cachespot/pkg/types"
	"github.com/srodi/cachespot/pkg/ui"
)

func newTraceCommand(a *app) *cobra.Command {
	var (
		file   string
		legend bool
	)

	cmd := &cobra.Command{
		Use:   "trace [-f] FILE",
		Short: "Print the residency of a file whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return fmt.Errorf("trace: no file given")
			}
			return a.trace(cmd, file, legend)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "file to trace")
	flags.BoolVar(&legend, "legend", false, "print the glyph legend first")
	flags.DurationP("delay", "d", types.DefaultDelay, "sampling interval")
	flags.Uint64P("count", "c", types.DefaultCount, "number of samples")
	flags.Float64P("threshold", "r", types.DefaultThreshold, "report a sample when it differs by more than this")
	flags.Int("slots", types.DefaultSlots, "number of bins the file is split into")
	flags.String("policy", "equal", "partition policy: equal or tailed")
	a.bind("trace.delay", flags.Lookup("delay"))
	a.bind("trace.count", flags.Lookup("count"))
	a.bind("trace.threshold", flags.Lookup("threshold"))
	a.bind("trace.slots", flags.Lookup("slots"))
	a.bind("trace.policy", flags.Lookup("policy"))
	return cmd
}

func (a *app) trace(cmd *cobra.Command, path string, legend bool) error {
	cfg := a.cfg.Trace
	policy, err := a.cfg.TracePolicy()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	palette := ui.NewPalette(ui.Enabled(out))
	if legend {
		fmt.Fprintln(out, palette.Legend())
	}

	metrics := export.NewTextfile(a.cfg.Metrics.File)
	mon := monit.New(monit.Config{
		Delay:     cfg.Delay,
		Count:     cfg.Count,
		Threshold: cfg.Threshold,
		Slots:     cfg.Slots,
		Policy:    policy,
	}, a.log)

	sum, err := mon.Run(cmd.Context(), path, func(s monit.Snapshot) error {
		metrics.ObserveTrace(path, s.Bands)
		_, err := fmt.Fprintln(out, report.TraceLine(s.Stamp, s.Bands, palette.Paint))
		return err
	})
	if err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"path":      path,
		"cycles":    sum.Cycles,
		"reported":  sum.Reported,
		"scan_mean": sum.ScanMean,
		"scan_p90":  sum.ScanP90,
		"spent":     sum.Period,
	}).Debug("trace finished")
	return metrics.Write()
}
