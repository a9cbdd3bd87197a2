package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrid(t *testing.T, x, y []float64, z [][]float64) *Grid {
	t.Helper()
	g, err := New(x, y, z)
	require.NoError(t, err)
	return g
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		z    [][]float64
	}{
		{"empty x", nil, []float64{0}, [][]float64{{}}},
		{"empty y", []float64{0}, nil, nil},
		{"row count", []float64{0, 1}, []float64{0, 1}, [][]float64{{1, 2}}},
		{"row length", []float64{0, 1}, []float64{0, 1}, [][]float64{{1, 2}, {3}}},
		{"not monotonic", []float64{0, 2, 1}, []float64{0}, [][]float64{{1, 2, 3}}},
		{"nan coordinate", []float64{0, math.NaN()}, []float64{0}, [][]float64{{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.x, tt.y, tt.z)
			assert.ErrorIs(t, err, ErrInvalidGrid)
		})
	}
}

func TestNewDescendingAxes(t *testing.T) {
	g := mustGrid(t, []float64{3, 2, 1}, []float64{1, 0}, [][]float64{{1, 2, 3}, {4, 5, 6}})
	rows, cols := g.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 6.0, g.At(1, 2))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, g.Values())
}

func TestComputeExtents(t *testing.T) {
	a := mustGrid(t, []float64{0, 1, 2}, []float64{0, 1}, [][]float64{{1, Missing, 3}, {4, 5, 6}})
	b := mustGrid(t, []float64{5, 6}, []float64{0, 1}, [][]float64{{-2, 0}, {math.Inf(1), 9}})
	c := mustGrid(t, []float64{0, 7}, []float64{10, 11}, [][]float64{{0, 0}, {0, 0}})

	e := ComputeExtents([]*Grid{a, b, c})

	assert.Equal(t, Domain{0, 6}, e.X)
	assert.Equal(t, Domain{0, 11}, e.Y)
	assert.Equal(t, Domain{-2, 9}, e.Z)
	// c shares its x minimum with a, and b shares y with a.
	assert.Equal(t, []Domain{{0, 2}, {5, 6}}, e.XFiles)
	assert.Equal(t, []Domain{{0, 1}, {10, 11}}, e.YFiles)
	assert.Len(t, e.ZFiles, 3)
}

func TestComputeExtentsAllMissing(t *testing.T) {
	g := mustGrid(t, []float64{0, 1}, []float64{0}, [][]float64{{Missing, Missing}})
	e := ComputeExtents([]*Grid{g})
	assert.False(t, e.Z.Valid())
	assert.True(t, e.X.Valid())
}

func TestAtIndex(t *testing.T) {
	g := mustGrid(t, []float64{0, 10, 30}, []float64{100, 50}, [][]float64{{1, 2, 3}, {4, 5, 6}})

	assert.Equal(t, 0.0, g.XAtIndex(0))
	assert.Equal(t, 5.0, g.XAtIndex(0.5))
	assert.Equal(t, 20.0, g.XAtIndex(1.5))
	assert.Equal(t, 30.0, g.XAtIndex(2))
	assert.Equal(t, 30.0, g.XAtIndex(3), "beyond the edge clamps to the last sample")
	assert.Equal(t, 75.0, g.YAtIndex(0.5))
}

func TestDownsample(t *testing.T) {
	const rows, cols = 25, 10
	x := make([]float64, cols)
	y := make([]float64, rows)
	z := make([][]float64, rows)
	for i := range x {
		x[i] = float64(i)
	}
	for r := range z {
		y[r] = float64(r)
		z[r] = make([]float64, cols)
		for c := range z[r] {
			z[r][c] = float64(r*100 + c)
		}
	}
	g := mustGrid(t, x, y, z)

	t.Run("within target", func(t *testing.T) {
		assert.Same(t, g, Downsample(g, 25))
		assert.Same(t, g, Downsample(g, 0))
	})

	t.Run("strided", func(t *testing.T) {
		d := Downsample(g, 5)
		r, c := d.Dims()
		assert.Equal(t, 5, r)
		assert.Equal(t, 5, c)
		assert.Equal(t, []float64{0, 5, 10, 15, 20}, d.Y)
		assert.Equal(t, []float64{0, 2, 4, 6, 8}, d.X)
		assert.Equal(t, 1002.0, d.At(2, 1))
	})

	t.Run("never larger", func(t *testing.T) {
		for target := 1; target < 30; target++ {
			d := Downsample(g, target)
			r, c := d.Dims()
			assert.LessOrEqual(t, r, rows)
			assert.LessOrEqual(t, c, cols)
			assert.Len(t, d.X, c)
			assert.Len(t, d.Y, r)
		}
	})
}

func TestNullMask(t *testing.T) {
	g := mustGrid(t,
		[]float64{0, 1, 2, 3},
		[]float64{0, 1, 2},
		[][]float64{
			{1, 1, 1, 1},
			{1, 1, 1, 1},
			{1, 1, 1, Missing},
		})
	require.True(t, g.HasMissing())

	m := NullMask(g, 99)
	want := [][]float64{
		{1, 1, 1, 1},
		{1, 1, 99, 99},
		{1, 1, 99, 99},
	}
	for r, row := range want {
		for c, v := range row {
			assert.Equal(t, v, m.At(r, c), "cell %d,%d", r, c)
		}
	}
	assert.True(t, math.IsNaN(g.At(2, 3)), "source grid is not modified")
	assert.False(t, m.HasMissing())
}
