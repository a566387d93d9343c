package decay

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeight(t *testing.T) {
	assert.InDelta(t, math.Exp(-1.0/3), Weight(time.Second, 3*time.Second), 1e-12)
	assert.InDelta(t, 1.0, Weight(0, time.Second), 1e-12)
}

func TestZeroWeightTakesSample(t *testing.T) {
	var v Value
	assert.Equal(t, int64(42), v.Update(Zero, 42))
	assert.Equal(t, int64(42), v.Get())
}

func TestUpdateConverges(t *testing.T) {
	var v Value
	w := Weight(time.Second, 3*time.Second)

	v.Update(Zero, 0)
	for i := 0; i < 200; i++ {
		v.Update(w, 1000)
	}
	assert.Equal(t, int64(1000), v.Update(w, 1000))
}

func TestUpdateRoundsHalfUp(t *testing.T) {
	var v Value
	v.Update(Zero, 10)

	got := v.Update(0.5, 11)
	assert.Equal(t, int64(11), got)
	assert.Equal(t, int64(10), v.Get())
}
