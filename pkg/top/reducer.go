package top

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/srodi/cachespot/pkg/probe"
	"github.com/srodi/cachespot/pkg/types"
	"github.com/srodi/cachespot/pkg/walk"
)

// SummaryName labels the grand total entry.
const SummaryName = ":summary"

// Config controls filtering and reduction of walk entries.
type Config struct {
	// Edge is the directory depth whose subtrees are reported as one entry; below 1 disables it.
	Edge int
	// Zeroes keeps entries without resident bytes.
	Zeroes bool
	// Summary reports the grand total of every file seen.
	Summary bool
	// Top keeps only the Limit largest entries, reported at the end.
	Top   bool
	Limit int
	// Ratio drops entries whose resident share is below it.
	Ratio float64
}

// Reducer turns walk events into reported entries.
type Reducer struct {
	cfg   Config
	probe *probe.Probe
	open  probe.Opener
	log   logrus.FieldLogger
	emit  func(Entry)
	heap  *Heap
}

// NewReducer returns a reducer reporting through emit.
func NewReducer(cfg Config, open probe.Opener, log logrus.FieldLogger, emit func(Entry)) *Reducer {
	if open == nil {
		open = probe.MapFile
	}
	return &Reducer{
		cfg:   cfg,
		probe: probe.New(),
		open:  open,
		log:   log,
		emit:  emit,
	}
}

// Run consumes every event of e, paths being relative to root, and returns
// the grand total over all probed files.
func (r *Reducer) Run(root string, e walk.Enum) Entry {
	if r.cfg.Top {
		r.heap = NewHeap(r.cfg.Limit)
	}

	total := Entry{Label: walk.Ref{Type: types.Dir, Name: SummaryName}}
	var aggr Entry

	for {
		ref, ok := e.Next()
		if !ok {
			break
		}

		if aggr.Valid() && !aggr.Label.Above(ref) {
			r.feed(aggr)
			aggr = Entry{}
		}

		switch ref.Type {
		case types.Dir:
			if r.cfg.Edge > 0 && ref.Depth == r.cfg.Edge {
				if aggr.Valid() {
					panic("top: nested aggregate at depth " + ref.Name)
				}
				aggr = Entry{Label: ref}
			}

		case types.File:
			entry, ok := r.measure(filepath.Join(root, ref.Name), ref)
			if !ok {
				continue
			}
			total.Used += entry.Used
			total.Size += entry.Size

			if aggr.Valid() {
				aggr.Add(entry)
			} else {
				r.feed(entry)
			}

		case types.Access:
			r.log.WithField("path", filepath.Join(root, ref.Name)).Warn("cannot descend into directory")
		}
	}

	if aggr.Valid() {
		r.feed(aggr)
	}
	if r.cfg.Summary {
		r.emit(total)
	}
	r.drain()

	return total
}

func (r *Reducer) measure(path string, ref walk.Ref) (Entry, bool) {
	region, release, err := r.open(path)
	if err != nil {
		r.log.WithField("path", path).WithError(err).Warn("cannot open file")
		return Entry{}, false
	}
	defer func() {
		if err := release(); err != nil {
			r.log.WithField("path", path).WithError(err).Debug("release failed")
		}
	}()

	if region.Len() == 0 {
		return Entry{}, false
	}
	used, size, err := r.probe.Count(region)
	if err != nil {
		r.log.WithField("path", path).WithError(err).Warn("cannot probe file")
		return Entry{}, false
	}
	return Entry{Used: used, Size: size, Label: ref}, true
}

func (r *Reducer) feed(e Entry) {
	switch {
	case e.Used == 0 && !r.cfg.Zeroes:
	case e.Ratio() < r.cfg.Ratio:
	case r.heap != nil:
		r.heap.Push(e)
	default:
		r.emit(e)
	}
}

func (r *Reducer) drain() {
	if r.heap == nil {
		return
	}
	for _, e := range r.heap.Drain() {
		r.emit(e)
	}
	r.heap = nil
}
