// Package export publishes reported residency as Prometheus gauges in the
// node_exporter textfile format.
package export

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srodi/cachespot/pkg/bands"
	"github.com/srodi/cachespot/pkg/top"
)

const namespace = "cachespot"

// Textfile collects gauges and rewrites one file on Write.
// A nil *Textfile ignores every call.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	resident *prometheus.GaugeVec
	size     *prometheus.GaugeVec
	ratio    *prometheus.GaugeVec
	bins     *prometheus.GaugeVec
}

// NewTextfile returns an exporter writing to path, or nil when path is empty.
func NewTextfile(path string) *Textfile {
	if path == "" {
		return nil
	}
	t := &Textfile{
		path:     path,
		registry: prometheus.NewRegistry(),
		resident: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "file_resident_bytes",
			Help:      "Bytes of the file or subtree resident in the page cache.",
		}, []string{"path", "depth"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "file_size_bytes",
			Help:      "Page rounded size of the file or subtree.",
		}, []string{"path", "depth"}),
		ratio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trace_resident_ratio",
			Help:      "Resident share of the traced file at the last reported snapshot.",
		}, []string{"path"}),
		bins: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trace_bin_resident_ratio",
			Help:      "Resident share of each bin of the traced file.",
		}, []string{"path", "bin"}),
	}
	t.registry.MustRegister(t.resident, t.size, t.ratio, t.bins)
	return t
}

// ObserveEntry records a stats entry.
func (t *Textfile) ObserveEntry(e top.Entry) {
	if t == nil {
		return
	}
	depth := strconv.Itoa(e.Label.Depth)
	t.resident.WithLabelValues(e.Label.Name, depth).Set(float64(e.Used))
	t.size.WithLabelValues(e.Label.Name, depth).Set(float64(e.Size))
}

// ObserveTrace records a trace snapshot of path.
func (t *Textfile) ObserveTrace(path string, b *bands.Bands) {
	if t == nil {
		return
	}
	t.ratio.WithLabelValues(path).Set(b.Ratio())
	t.bins.DeletePartialMatch(prometheus.Labels{"path": path})
	for i, bin := range b.Bins() {
		t.bins.WithLabelValues(path, strconv.Itoa(i)).Set(bin.Usage())
	}
}

// Write atomically replaces the textfile with the current gauges.
func (t *Textfile) Write() error {
	if t == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", t.path)
	}
	return nil
}
