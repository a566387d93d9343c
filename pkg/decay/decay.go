// Package decay implements an exponentially decayed moving average.
package decay

import (
	"math"
	"time"
)

// Zero is the weight that discards all history.
const Zero = 0.0

// Weight is the share of history kept after elapsed for time constant depth.
func Weight(elapsed, depth time.Duration) float64 {
	return math.Exp(-float64(elapsed) / float64(depth))
}

// Value is a decayed average of integer samples.
type Value struct {
	state float64
}

// Update folds sample in keeping weight w of the previous state and returns
// the state rounded half up.
func (v *Value) Update(w float64, sample int64) int64 {
	v.state = (1-w)*float64(sample) + w*v.state
	return int64(v.state + 0.5)
}

// Get returns the state truncated toward zero.
func (v Value) Get() int64 {
	return int64(v.state)
}
