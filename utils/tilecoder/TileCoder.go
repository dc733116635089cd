// Package tilecoder implements tile coding of vectors
package tilecoder

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/autolearn/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// Controls tiling offsets. For each dimension, tilings are offset by
// randomly sampling from a uniform distribution with support
// [- tiling width/OffsetDiv, tiling width/OffsetDiv]
const OffsetDiv float64 = 1.5

// TileCoder implements functionality for tile coding a vector. Tile
// coding takes a low-dimensional vector and changes it into a large,
// sparse vector consisting of only 0's and 1's. Each 1 represents the
// coordinates of the original vector in some space of tilings. For
// example:
//
//	[0.5, 0.1] -> [0, 0, 0, 1, 0, 0, 1, 0]
//
// The number of nonzero elements in the tile-coded representation equals
// the number of tilings used to encode the vector (plus one if a bias
// unit is used). Tile coding requires that the space to be tiled be
// bounded.
//
// Tilings are dense over the entire space, hashing is not used.
type TileCoder struct {
	numTilings  int
	minDims     []float64
	offsets     *mat.Dense
	bins        [][]int
	binLengths  [][]float64
	includeBias bool
}

// New creates and returns a new TileCoder. The bounds argument gives
// the interval along each dimension over which tilings are placed.
//
// The bins argument determines both the number of tilings to use and
// the number of tiles per each tiling. The number of elements in the
// outer slice determines the number of tilings to use. The sub-slices
// determine how many tiles are placed along each dimension for the
// respective tiling. For example, if bins := [][]int{{2, 2}, {4, 3}},
// then the TileCoder uses two tilings: a 2x2 tiling and a 4x3 tiling.
//
// The parameter includeBias determines whether or not a bias unit is
// kept as the first unit in the tile coded representation.
func New(bounds []r1.Interval, bins [][]int, seed uint64,
	includeBias bool) (*TileCoder, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("new: cannot tile code a 0-dimensional space")
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("new: must use at least 1 tiling")
	}

	minDims := make([]float64, len(bounds))
	for i, b := range bounds {
		width := b.Max - b.Min
		if math.IsInf(width, 0) || math.IsNaN(width) || width <= 0 {
			return nil, fmt.Errorf("new: dimension %d has unusable bounds "+
				"%v", i, b)
		}
		minDims[i] = b.Min
	}

	// Calculate the length of bins and the tiling offset bounds
	numTilings := len(bins)
	offsetBounds := make([]r1.Interval, 0, numTilings*len(bounds))
	binLengths := make([][]float64, numTilings)
	for j, tiling := range bins {
		if len(tiling) != len(bounds) {
			return nil, fmt.Errorf("new: tiling %d should have a number of "+
				"tiles for each dimension \n\twant(%d) \n\thave(%d)", j,
				len(bounds), len(tiling))
		}

		binLengths[j] = make([]float64, len(bounds))
		for i, tiles := range tiling {
			if tiles < 1 {
				return nil, fmt.Errorf("new: tiling %d must have at least "+
					"1 tile along dimension %d", j, i)
			}
			binLength := (bounds[i].Max - bounds[i].Min) / float64(tiles)
			bound := binLength / OffsetDiv

			binLengths[j][i] = binLength
			offsetBounds = append(offsetBounds, r1.Interval{Min: -bound,
				Max: bound})
		}
	}

	// Each tiling's offsets occupy a contiguous block of one sample
	source := rand.NewSource(seed)
	sampler := samplemv.IID{Dist: distmv.NewUniform(offsetBounds, source)}
	samples := mat.NewDense(1, len(offsetBounds), nil)
	sampler.Sample(samples)
	offsets := mat.NewDense(numTilings, len(bounds), samples.RawRowView(0))

	return &TileCoder{numTilings, minDims, offsets, bins, binLengths,
		includeBias}, nil
}

// featuresBeforeTiling calculates how many features exist in the
// tile-coded representation before tiling number i
func (t *TileCoder) featuresBeforeTiling(i int) int {
	features := 0
	if t.includeBias {
		features++
	}
	for j := 0; j < i; j++ {
		features += prod(t.bins[j])
	}
	return features
}

// encodeWithTiling returns the index of the tile coded feature vector
// which should be a 1.0 when v is encoded with tiling number tiling
func (t *TileCoder) encodeWithTiling(v mat.Vector, tiling int) int {
	index := 0
	bins := t.bins[tiling]
	for i := len(bins) - 1; i > -1; i-- {
		data := v.AtVec(i) + t.offsets.At(tiling, i)
		tile := math.Floor((data - t.minDims[i]) / t.binLengths[tiling][i])

		// Out of bounds values fall into the edge tiles
		tile = floatutils.Clip(tile, 0.0, float64(bins[i]-1))

		if i == len(bins)-1 {
			index += int(tile)
		} else {
			index += int(tile) * bins[i+1]
		}
	}
	return t.featuresBeforeTiling(tiling) + index
}

// EncodeIndices returns the non-zero indices in the tile coded vector
// when v is tile coded. If a bias unit is used, index 0 is the last
// element of the returned slice.
func (t *TileCoder) EncodeIndices(v mat.Vector) []int {
	if v.Len() != len(t.minDims) {
		panic(fmt.Sprintf("encodeIndices: vector has %d dimensions, "+
			"expected %d", v.Len(), len(t.minDims)))
	}

	indices := make([]int, 0, t.numTilings+1)
	for i := 0; i < t.numTilings; i++ {
		indices = append(indices, t.encodeWithTiling(v, i))
	}
	if t.includeBias {
		indices = append(indices, 0)
	}
	return indices
}

// Encode encodes a single vector as a tile-coded vector
func (t *TileCoder) Encode(v mat.Vector) *mat.VecDense {
	tileCoded := mat.NewVecDense(t.VecLength(), nil)
	for _, index := range t.EncodeIndices(v) {
		tileCoded.SetVec(index, 1.0)
	}
	return tileCoded
}

// VecLength returns the number of features in a tile-coded vector
func (t *TileCoder) VecLength() int {
	return t.featuresBeforeTiling(t.numTilings)
}

// NumTilings returns the number of tilings the tile coder uses for
// encoding vectors
func (t *TileCoder) NumTilings() int {
	return t.numTilings
}

// String returns a string representation of a *TileCoder
func (t *TileCoder) String() string {
	return fmt.Sprintf("Tilings %d  |  Tiles: %v", t.numTilings, t.bins)
}

// prod calculates the product of all integers in a []int
func prod(i []int) int {
	prod := 1
	for _, v := range i {
		prod *= v
	}
	return prod
}
