package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/srodi/cachespot/pkg/osfile"
	"github.com/srodi/cachespot/pkg/probe"
	"github.com/srodi/cachespot/pkg/report"
)

func newEvictCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "evict FILE...",
		Short: "Drop cached pages of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := probe.New()
			failed := 0
			for _, path := range args {
				before, after, size, err := evict(p, path)
				if err != nil {
					a.log.WithField("path", path).WithError(err).Warn("cannot evict file")
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%5s -> %5s of %5s %s\n",
					report.Human(before), report.Human(after), report.Human(size), path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files not evicted", failed, len(args))
			}
			return nil
		},
	}
}

// evict drops the cached pages of path and returns its resident bytes before
// and after along with the paged size.
func evict(p *probe.Probe, path string) (before, after, size uint64, err error) {
	f, err := osfile.Open(path)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	count := func() (uint64, uint64, error) {
		m, err := f.Map()
		if err != nil {
			return 0, 0, err
		}
		defer m.Close()
		return p.Count(m)
	}

	if before, size, err = count(); err != nil {
		return 0, 0, 0, err
	}
	if err = f.Evict(0, 0); err != nil {
		return 0, 0, 0, err
	}
	if after, _, err = count(); err != nil {
		return 0, 0, 0, errors.Wrap(err, "after eviction")
	}
	return before, after, size, nil
}
