// Package ticks paces a fixed number of cycles at a nominal interval while
// compensating for scheduling jitter.
package ticks

import (
	"time"

	"github.com/srodi/cachespot/pkg/decay"
)

// Clock is the monotonic time source used by a Ticker.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// System is the wall clock. time.Now carries a monotonic reading.
var System Clock = systemClock{}

// Ticker yields cycles nominally interval apart. It is forward only.
type Ticker struct {
	clock  Clock
	tick   time.Duration
	weight float64
	cycles uint64
	count  uint64
	stamp  time.Time
	start  time.Time
	shift  decay.Value
	spent  decay.Value
}

// New returns a ticker for cycles cycles of interval each on the system clock.
func New(interval time.Duration, cycles uint64) *Ticker {
	return NewWithClock(System, interval, cycles)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(clock Clock, interval time.Duration, cycles uint64) *Ticker {
	t := &Ticker{clock: clock, tick: interval, cycles: cycles}
	if interval > 0 {
		t.weight = decay.Weight(interval, 3*interval)
	}
	return t
}

// Next blocks until the next cycle is due and reports whether one is left.
func (t *Ticker) Next() bool {
	if t.count >= t.cycles {
		return false
	}
	t.count++

	if t.count == 1 {
		t.start = t.clock.Now()
		t.stamp = t.start
		return true
	}

	t.stamp = t.stamp.Add(t.tick)
	now := t.clock.Now()
	skip := t.stamp.Sub(now) - time.Duration(t.shift.Get())

	if t.count == 2 {
		t.spent.Update(decay.Zero, int64(now.Sub(t.start)))
	} else {
		t.spent.Update(t.weight, int64(now.Sub(t.start)))
	}

	if skip > 0 {
		t.clock.Sleep(skip)
		t.start = t.clock.Now()

		delta := time.Duration(t.shift.Get()) + t.start.Sub(t.stamp)
		t.shift.Update(t.weight, int64(delta))
	} else {
		t.start = t.clock.Now()
	}
	return true
}

// Cycle is the number of cycles yielded so far.
func (t *Ticker) Cycle() uint64 {
	return t.count
}

// Used is the decayed time spent between wake ups.
func (t *Ticker) Used() time.Duration {
	return time.Duration(t.spent.Get())
}

// Shift is the current estimate of systematic oversleep.
func (t *Ticker) Shift() time.Duration {
	return time.Duration(t.shift.Get())
}
