// Package monit traces how the page cache residency of one file changes over time.
package monit

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/srodi/cachespot/pkg/bands"
	"github.com/srodi/cachespot/pkg/parts"
	"github.com/srodi/cachespot/pkg/probe"
	"github.com/srodi/cachespot/pkg/ticks"
)

// Config controls a trace session.
type Config struct {
	Delay     time.Duration
	Count     uint64
	Threshold float64
	Slots     int
	Policy    parts.Policy
}

// Snapshot is a reported residency sample.
type Snapshot struct {
	Stamp time.Time
	Cycle uint64
	Diff  float64
	Bands *bands.Bands
}

// Summary describes a finished session.
type Summary struct {
	Cycles   uint64
	Reported int
	ScanMean time.Duration
	ScanP90  time.Duration
	Period   time.Duration
}

// Monitor samples a file every cycle and reports significant changes.
type Monitor struct {
	cfg   Config
	log   logrus.FieldLogger
	probe *probe.Probe
	open  probe.Opener
	clock ticks.Clock
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithOpener replaces how files are mapped.
func WithOpener(open probe.Opener) Option {
	return func(m *Monitor) { m.open = open }
}

// WithClock replaces the clock pacing the session.
func WithClock(clock ticks.Clock) Option {
	return func(m *Monitor) { m.clock = clock }
}

// New returns a monitor for cfg.
func New(cfg Config, log logrus.FieldLogger, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:   cfg,
		log:   log,
		probe: probe.New(),
		open:  probe.MapFile,
		clock: ticks.System,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run traces path until Count cycles elapsed or ctx is done, calling emit for
// the first snapshot and for every later one differing by more than Threshold.
// Failing to map or probe the file ends the session with an error.
func (m *Monitor) Run(ctx context.Context, path string, emit func(Snapshot) error) (Summary, error) {
	var (
		sum   Summary
		was   *bands.Bands
		scans []float64
	)
	log := m.log.WithField("path", path)
	ticker := ticks.NewWithClock(m.clock, m.cfg.Delay, m.cfg.Count)

	for ticker.Next() {
		if ctx.Err() != nil {
			log.Debug("trace cancelled")
			break
		}
		sum.Cycles = ticker.Cycle()

		began := m.clock.Now()
		now, err := m.sample(path)
		if err != nil {
			return sum, errors.Wrapf(err, "tracing %s", path)
		}
		stamp := m.clock.Now()
		scans = append(scans, float64(stamp.Sub(began)))

		diff, changed := m.changed(was, now)
		log.WithFields(logrus.Fields{"cycle": sum.Cycles, "diff": diff, "ratio": now.Ratio()}).Debug("sampled")
		if !changed {
			continue
		}
		was = now
		sum.Reported++
		if err := emit(Snapshot{Stamp: stamp, Cycle: sum.Cycles, Diff: diff, Bands: now}); err != nil {
			return sum, errors.Wrap(err, "reporting snapshot")
		}
	}

	sum.Period = ticker.Used()
	if len(scans) > 0 {
		mean, _ := stats.Mean(scans)
		p90, _ := stats.Percentile(scans, 90)
		sum.ScanMean = time.Duration(mean)
		sum.ScanP90 = time.Duration(p90)
	}
	return sum, nil
}

func (m *Monitor) sample(path string) (*bands.Bands, error) {
	region, release, err := m.open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			m.log.WithField("path", path).WithError(err).Debug("release failed")
		}
	}()

	b, err := bands.New(m.cfg.Policy, probe.Granule(region).Paged(), m.cfg.Slots)
	if err != nil {
		return nil, err
	}
	if err := m.probe.Feed(region, b); err != nil {
		return nil, err
	}
	return b, nil
}

// changed decides whether now replaces was. A resized file always does.
func (m *Monitor) changed(was, now *bands.Bands) (float64, bool) {
	if was == nil || !was.Compatible(now) {
		return 0, true
	}
	diff := bands.Diff(was, now)
	return diff, diff > m.cfg.Threshold
}
