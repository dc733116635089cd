package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	w, err := NewFile(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.LogDir())

	require.NoError(t, w.AddScalar("loss/q", 0.5, 1))
	require.NoError(t, w.AddScalar("return", 10, 2))
	require.NoError(t, w.Close())
	assert.Error(t, w.AddScalar("return", 1, 3))

	// Reopening appends without a second header
	w, err = NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, w.AddScalar("return", 12, 3))
	require.NoError(t, w.Close())

	f, err := os.Open(filepath.Join(dir, ScalarsFile))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "step", "value"},
		{"loss/q", "1", "0.5"},
		{"return", "2", "10"},
		{"return", "3", "12"},
	}, rows)
}

type recorder struct {
	Dummy
	names []string
}

func (r *recorder) AddScalar(name string, _ float64, _ int) error {
	r.names = append(r.names, name)
	return nil
}

func TestWithoutPrefix(t *testing.T) {
	r := &recorder{}
	w := WithoutPrefix(r, "loss/")
	require.NoError(t, w.AddScalar("loss/q", 1, 1))
	require.NoError(t, w.AddScalar("return", 1, 1))
	assert.Equal(t, []string{"return"}, r.names)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{Dummy: Dummy{Dir: "b"}}
	w := NewMulti(a, b)
	require.NoError(t, w.AddScalar("x", 1, 1))
	assert.Equal(t, []string{"x"}, a.names)
	assert.Equal(t, []string{"x"}, b.names)
	assert.Equal(t, "b", w.LogDir())
	assert.NoError(t, w.Close())
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPrometheus(reg, "autolearn", "a", "")
	require.NoError(t, err)
	b, err := NewPrometheus(reg, "autolearn", "b", "")
	require.NoError(t, err)

	require.NoError(t, a.AddScalar("return", 3, 7))
	require.NoError(t, b.AddScalar("return", 4, 8))

	assert.Equal(t, 3.0, testutil.ToFloat64(a.value.WithLabelValues("a",
		"return")))
	assert.Equal(t, 8.0, testutil.ToFloat64(b.step.WithLabelValues("b",
		"return")))
	assert.Equal(t, 2, testutil.CollectAndCount(a.value))

	require.NoError(t, a.Close())
	assert.Equal(t, 1, testutil.CollectAndCount(b.value))
}
