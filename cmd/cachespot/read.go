package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srodi/cachespot/pkg/load"
	"github.com/srodi/cachespot/pkg/osfile"
	"github.com/srodi/cachespot/pkg/types"
)

func newReadCommand(a *app) *cobra.Command {
	var (
		file string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "read -f FILE",
		Short: "Read a file block by block to warm the page cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.read(cmd, file, mode)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "file to read")
	flags.StringVarP(&mode, "mode", "m", "", "read order: seq or rnd (default from read.random)")
	flags.StringP("block", "b", humanize.IBytes(types.DefaultBlock), "request size, rounded up to 4 KiB")
	flags.DurationP("delay", "d", 0, "pause between requests")
	flags.Uint64P("count", "c", 1024, "number of requests")
	flags.Bool("direct", false, "bypass the page cache with O_DIRECT")
	_ = cmd.MarkFlagRequired("file")
	a.bind("read.block", flags.Lookup("block"))
	a.bind("read.delay", flags.Lookup("delay"))
	a.bind("read.count", flags.Lookup("count"))
	a.bind("read.direct", flags.Lookup("direct"))
	return cmd
}

func (a *app) read(cmd *cobra.Command, path, mode string) error {
	cfg := a.cfg.Read
	switch mode {
	case "seq":
		cfg.Random = false
	case "rnd":
		cfg.Random = true
	case "":
	default:
		return fmt.Errorf("unknown read mode %q", mode)
	}
	block, err := a.cfg.BlockSize()
	if err != nil {
		return err
	}

	open := osfile.Open
	if cfg.Direct {
		open = osfile.OpenDirect
	}
	f, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gen := load.New(load.Config{
		Block:  block,
		Delay:  cfg.Delay,
		Count:  cfg.Count,
		Random: cfg.Random,
		Direct: cfg.Direct,
	}, a.log.WithField("path", path), nil)

	res, err := gen.Run(cmd.Context(), f)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"path":    path,
		"reads":   res.Reads,
		"bytes":   humanize.IBytes(res.Bytes),
		"mean":    res.Mean,
		"p90":     res.P90,
		"slowest": res.Slowest,
	}).Info("read finished")
	return nil
}
