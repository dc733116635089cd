package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r1"
	"pgregory.net/rapid"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, -1, 1))
	assert.Equal(t, -1.0, Clip(-3, -1, 1))
	assert.Equal(t, 0.5, ClipInterval(0.5, r1.Interval{Min: 0, Max: 1}))
}

func TestWrapInterval(t *testing.T) {
	i := r1.Interval{Min: -math.Pi, Max: math.Pi}
	assert.InDelta(t, -math.Pi+0.5, WrapInterval(math.Pi+0.5, i), 1e-12)
	assert.InDelta(t, math.Pi-0.5, WrapInterval(-math.Pi-0.5, i), 1e-12)
	assert.Equal(t, 1.0, WrapInterval(1, i))

	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-100, 100).Draw(rt, "x")
		w := WrapInterval(x, i)
		assert.GreaterOrEqual(rt, w, i.Min)
		assert.LessOrEqual(rt, w, i.Max)
		assert.InDelta(rt, math.Sin(x), math.Sin(w), 1e-9)
	})
}
