package tilecoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"pgregory.net/rapid"
)

func unitBounds(dims int) []r1.Interval {
	b := make([]r1.Interval, dims)
	for i := range b {
		b[i] = r1.Interval{Min: 0, Max: 1}
	}
	return b
}

func TestVecLength(t *testing.T) {
	tc, err := New(unitBounds(2), [][]int{{2, 2}, {4, 3}}, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 16, tc.VecLength())
	assert.Equal(t, 2, tc.NumTilings())

	tc, err = New(unitBounds(2), [][]int{{2, 2}, {4, 3}}, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 17, tc.VecLength())
}

func TestEncodeOneHotPerTiling(t *testing.T) {
	bins := [][]int{{4, 4}, {4, 4}, {2, 8}}
	tc, err := New(unitBounds(2), bins, 3, true)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-0.5, 1.5).Draw(rt, "x")
		y := rapid.Float64Range(-0.5, 1.5).Draw(rt, "y")
		v := tc.Encode(mat.NewVecDense(2, []float64{x, y}))

		assert.Equal(rt, 1.0, v.AtVec(0))
		offset := 1
		for _, tiling := range bins {
			n := tiling[0] * tiling[1]
			assert.Equal(rt, 1.0, mat.Sum(v.SliceVec(offset, offset+n)))
			offset += n
		}
	})
}

func TestSameSeedSameTilings(t *testing.T) {
	a, err := New(unitBounds(3), [][]int{{5, 5, 5}}, 9, false)
	require.NoError(t, err)
	b, err := New(unitBounds(3), [][]int{{5, 5, 5}}, 9, false)
	require.NoError(t, err)

	v := mat.NewVecDense(3, []float64{0.3, 0.6, 0.9})
	assert.Equal(t, a.EncodeIndices(v), b.EncodeIndices(v))
}

func TestInvalid(t *testing.T) {
	_, err := New(nil, [][]int{{1}}, 0, false)
	assert.Error(t, err)

	_, err = New(unitBounds(2), nil, 0, false)
	assert.Error(t, err)

	_, err = New(unitBounds(2), [][]int{{2}}, 0, false)
	assert.Error(t, err)

	_, err = New(unitBounds(1), [][]int{{0}}, 0, false)
	assert.Error(t, err)

	_, err = New([]r1.Interval{{Min: -math.MaxFloat64, Max: math.MaxFloat64}},
		[][]int{{4}}, 0, false)
	assert.Error(t, err)
}

func BenchmarkTileCoder(b *testing.B) {
	tc, err := New(unitBounds(8), [][]int{{8, 8, 8, 8, 8, 8, 8, 8}}, 12, true)
	if err != nil {
		b.Fatal(err)
	}
	y := mat.NewVecDense(8, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	for i := 0; i < b.N; i++ {
		tc.Encode(y)
	}
}
