// Package load generates block reads against a file to exercise the page cache.
package load

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/srodi/cachespot/pkg/ticks"
)

// Seed makes random runs repeatable.
const Seed = 7500

// Source is a file the generator reads from.
type Source interface {
	Size() (uint64, error)
	ReadAt(buf []byte, off int64) (int, error)
}

// Config controls a load run.
type Config struct {
	Block  uint64
	Delay  time.Duration
	Count  uint64
	Random bool
	// Direct issues one read per block, as O_DIRECT transfers never come back short.
	Direct bool
}

// Result summarises a finished run.
type Result struct {
	Reads   uint64
	Bytes   uint64
	Slots   uint64
	Mean    time.Duration
	P90     time.Duration
	Slowest time.Duration
}

// ErrEmpty is returned for a source without a single block to read.
var ErrEmpty = errors.New("nothing to read")

// Positions yields block indices in [0, slots): consecutive ones, or random
// strides of 1..slots from a fixed seed.
func Positions(slots uint64, random bool) func() uint64 {
	pos := ^uint64(0)
	rng := rand.New(rand.NewPCG(Seed, Seed))
	return func() uint64 {
		step := uint64(1)
		if random {
			step = 1 + rng.Uint64N(slots)
		}
		pos = (pos + step) % slots
		return pos
	}
}

// Generator paces block reads against a source.
type Generator struct {
	cfg   Config
	log   logrus.FieldLogger
	clock ticks.Clock
}

// New returns a generator for cfg.
func New(cfg Config, log logrus.FieldLogger, clock ticks.Clock) *Generator {
	if clock == nil {
		clock = ticks.System
	}
	return &Generator{cfg: cfg, log: log, clock: clock}
}

// Run issues up to Count reads of Block bytes, one per cycle, until ctx is done.
func (g *Generator) Run(ctx context.Context, src Source) (Result, error) {
	var res Result
	if g.cfg.Block == 0 {
		return res, errors.New("block size must be positive")
	}

	size, err := src.Size()
	if err != nil {
		return res, err
	}
	res.Slots = (size + g.cfg.Block - 1) / g.cfg.Block
	if res.Slots == 0 {
		return res, ErrEmpty
	}

	buf, release, err := alignedBuffer(int(g.cfg.Block))
	if err != nil {
		return res, errors.Wrap(err, "allocating read buffer")
	}
	defer release()

	next := Positions(res.Slots, g.cfg.Random)
	var lat []float64
	for ticker := ticks.NewWithClock(g.clock, g.cfg.Delay, g.cfg.Count); ticker.Next(); {
		if ctx.Err() != nil {
			break
		}
		off := int64(next() * g.cfg.Block)

		began := g.clock.Now()
		n, err := g.read(src, buf, off)
		if err != nil {
			return res, errors.Wrapf(err, "reading block at %d", off)
		}
		lat = append(lat, float64(g.clock.Now().Sub(began)))
		res.Reads++
		res.Bytes += n
	}

	if len(lat) > 0 {
		mean, _ := stats.Mean(lat)
		p90, _ := stats.Percentile(lat, 90)
		slowest, _ := stats.Max(lat)
		res.Mean = time.Duration(mean)
		res.P90 = time.Duration(p90)
		res.Slowest = time.Duration(slowest)
	}
	g.log.WithFields(logrus.Fields{"reads": res.Reads, "bytes": res.Bytes}).Debug("load finished")
	return res, nil
}

// read fills buf from off, stopping early at end of file or after the first
// transfer in direct mode.
func (g *Generator) read(src Source, buf []byte, off int64) (uint64, error) {
	var done int
	for done < len(buf) {
		n, err := src.ReadAt(buf[done:], off+int64(done))
		if n < 0 {
			n = 0
		}
		done += n
		if err != nil && err != io.EOF {
			return uint64(done), err
		}
		if err == io.EOF || n == 0 || g.cfg.Direct {
			break
		}
	}
	return uint64(done), nil
}
