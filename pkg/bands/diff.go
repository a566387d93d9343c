package bands

import "fmt"

// Diff measures how much two snapshots of the same region differ.
// It is the larger of the aggregate term and the summed per-bin terms.
func Diff(a, b *Bands) float64 {
	return max(BandDiff(a.all, b.all), Spatial(a.bins, b.bins))
}

// Spatial sums BandDiff over corresponding bins. Both slices must have equal length.
func Spatial(a, b []Band) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("bands: diff of %d bins against %d bins", len(a), len(b)))
	}
	var acc float64
	for i := range a {
		acc += BandDiff(a[i], b[i])
	}
	return acc
}

// BandDiff is 2*|a-b|/(limitA+limitB), zero when both limits are zero.
func BandDiff(a, b Band) float64 {
	total := a.Limit + b.Limit
	if total == 0 {
		return 0
	}
	delta := max(a.Value, b.Value) - min(a.Value, b.Value)
	return 2 * float64(delta) / float64(total)
}
