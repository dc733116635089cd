package tracker

import (
	"testing"

	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type scalar struct {
	name  string
	value float64
	step  int
}

type recorder struct {
	scalars []scalar
}

func (r *recorder) AddScalar(name string, value float64, step int) error {
	r.scalars = append(r.scalars, scalar{name, value, step})
	return nil
}

func (r *recorder) LogDir() string { return "" }
func (r *recorder) Close() error   { return nil }

func TestEpisode(t *testing.T) {
	w := &recorder{}
	e := NewEpisode(w)
	obs := mat.NewVecDense(1, nil)

	steps := []ts.TimeStep{
		ts.New(ts.First, 5, 1, obs, 0),
		ts.New(ts.Mid, 1, 1, obs, 1),
		ts.New(ts.Last, 2, 1, obs, 2),
		ts.New(ts.First, 0, 1, obs, 0),
		ts.New(ts.Last, -1, 1, obs, 1),
	}
	tr := NewMulti(e)
	for _, s := range steps {
		require.NoError(t, tr.Track(s))
	}
	require.NoError(t, tr.Close())

	assert.Equal(t, 2, e.Episodes())
	assert.Equal(t, []scalar{
		{ReturnScalar, 3, 1},
		{LengthScalar, 2, 1},
		{ReturnScalar, -1, 2},
		{LengthScalar, 1, 2},
	}, w.scalars)
}
