package contour

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/grid"
)

func TestThresholds(t *testing.T) {
	th, step := Thresholds(grid.Domain{Min: 0, Max: 20}, 4)
	assert.Equal(t, []float64{0, 5, 10, 15}, th)
	assert.Equal(t, 5.0, step)

	th, step = Thresholds(grid.Domain{Min: 3, Max: 3}, 20)
	assert.Equal(t, []float64{3}, th)
	assert.Equal(t, 0.0, step)

	th, _ = Thresholds(grid.Domain{Min: -1, Max: 1}, 20)
	assert.Len(t, th, 20)
	assert.Equal(t, -1.0, th[0])
	assert.Less(t, th[19], 1.0)
}

func TestMaskLevels(t *testing.T) {
	for _, zMax := range []float64{20, 0, -5, 0.001, 1e6} {
		sentinel, level := MaskLevels(zMax)
		assert.Greater(t, level, zMax)
		assert.Greater(t, sentinel, level)
	}
}

func ringClosed(t *testing.T, r Ring) {
	t.Helper()
	require.GreaterOrEqual(t, len(r), 4)
	assert.Equal(t, r[0], r[len(r)-1])
}

func TestSingleCell(t *testing.T) {
	bands := MarchingSquares{}.Isobands([]float64{1}, 1, 1, []float64{0.5, 2})
	require.Len(t, bands, 2)

	assert.Equal(t, 0.5, bands[0].Value)
	require.Len(t, bands[0].Polygons, 1)
	r := bands[0].Polygons[0][0]
	ringClosed(t, r)
	assert.Greater(t, area(r), 0.0)
	assert.ElementsMatch(t, []Point{{1, 0.5}, {0.5, 0}, {0, 0.5}, {0.5, 1}}, []Point(r[:4]))

	assert.Empty(t, bands[1].Polygons)
}

func TestHoleAttachesToExterior(t *testing.T) {
	values := []float64{
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 0, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
	}
	bands := MarchingSquares{}.Isobands(values, 5, 5, []float64{0.5})
	require.Len(t, bands[0].Polygons, 1)
	poly := bands[0].Polygons[0]
	require.Len(t, poly, 2)
	ringClosed(t, poly[0])
	ringClosed(t, poly[1])
	assert.Greater(t, area(poly[0]), 0.0)
	assert.Less(t, area(poly[1]), 0.0)
	assert.Equal(t, 1, contains(poly[0], poly[1]))
}

func TestMissingValuesSplitBands(t *testing.T) {
	bands := MarchingSquares{}.Isobands([]float64{1, math.NaN(), 1}, 3, 1, []float64{0.5})
	assert.Len(t, bands[0].Polygons, 2)
}

func TestSmoothing(t *testing.T) {
	values := []float64{0, 1}
	hasX := func(b Band, x float64) bool {
		for _, p := range b.Polygons[0][0] {
			if p.Y == 0.5 && math.Abs(p.X-x) < 1e-12 {
				return true
			}
		}
		return false
	}

	raw := MarchingSquares{}.Isobands(values, 2, 1, []float64{0.75})[0]
	require.Len(t, raw.Polygons, 1)
	assert.True(t, hasX(raw, 1))

	smoothed := MarchingSquares{Smooth: true}.Isobands(values, 2, 1, []float64{0.75})[0]
	require.Len(t, smoothed.Polygons, 1)
	assert.True(t, hasX(smoothed, 1.25))
}

func TestRingContains(t *testing.T) {
	square := Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	assert.Equal(t, 1, ringContains(square, Point{2, 2}))
	assert.Equal(t, -1, ringContains(square, Point{5, 2}))
	assert.Equal(t, 0, ringContains(square, Point{4, 2}))
}

func mustGrid(t *testing.T, z [][]float64) *grid.Grid {
	t.Helper()
	x := make([]float64, len(z[0]))
	for i := range x {
		x[i] = float64(i)
	}
	y := make([]float64, len(z))
	for i := range y {
		y[i] = float64(i)
	}
	g, err := grid.New(x, y, z)
	require.NoError(t, err)
	return g
}

var threeByThree = [][]float64{{0, 5, 10}, {5, 10, 15}, {10, 15, 20}}

func TestPrepare(t *testing.T) {
	b := NewBuilder(zap.NewNop(), nil)
	th, step := Thresholds(grid.Domain{Min: 0, Max: 20}, 4)

	l, err := b.Prepare(mustGrid(t, threeByThree), th, step, 20)
	require.NoError(t, err)
	assert.Equal(t, 5.0, l.Step)
	assert.Len(t, l.Base.Polygons, 1)
	assert.Len(t, l.Main, 4)
	assert.Empty(t, l.Mask.Polygons)

	z := [][]float64{
		{0, 1, 2, 3},
		{4, grid.Missing, 6, 7},
		{8, 9, 10, 11},
		{12, 13, 14, 15},
	}
	l, err = b.Prepare(mustGrid(t, z), th, step, 20)
	require.NoError(t, err)
	assert.NotEmpty(t, l.Mask.Polygons)

	_, err = b.Prepare(mustGrid(t, z), nil, step, 20)
	assert.Error(t, err)
}

type failures map[string]int

func (f failures) ContourFailure(stage string) { f[stage]++ }

func newColors(t *testing.T) *colorscale.Scale {
	t.Helper()
	s, err := colorscale.New(colorscale.DefaultStops())
	require.NoError(t, err)
	return s
}

func TestPaintOrderAndColours(t *testing.T) {
	b := NewBuilder(zap.NewNop(), nil)
	th, step := Thresholds(grid.Domain{Min: 0, Max: 20}, 4)
	l, err := b.Prepare(mustGrid(t, threeByThree), th, step, 20)
	require.NoError(t, err)

	rec := &recorder.Canvas{}
	p := &Painter{
		Canvas: rec,
		Height: 30,
		X:      axis.NewLinear(0, 2, 0, 30),
		Y:      axis.NewLinear(0, 2, 30, 0),
		Z:      grid.Domain{Min: 0, Max: 20},
		Colors: newColors(t),
	}
	require.NoError(t, p.Paint(l))

	var colours []color.Color
	fills := 0
	for _, a := range rec.Actions {
		switch a := a.(type) {
		case *recorder.SetColor:
			colours = append(colours, a.Color)
		case *recorder.Fill:
			fills++
			require.NotEmpty(t, a.Path)
			assert.Equal(t, vg.MoveComp, a.Path[0].Type)
			assert.Equal(t, vg.CloseComp, a.Path[len(a.Path)-1].Type)
			for _, c := range a.Path {
				if c.Type == vg.CloseComp {
					continue
				}
				assert.True(t, c.Pos.X >= 0 && c.Pos.X <= 30, "x %v", c.Pos.X)
				assert.True(t, c.Pos.Y >= 0 && c.Pos.Y <= 30, "y %v", c.Pos.Y)
			}
		}
	}
	require.Len(t, colours, 4, "base plus three bands, band 0 skipped")
	assert.Equal(t, color.NRGBA{R: 64, B: 191, A: 255}, colours[0])
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, colours[3])
	assert.GreaterOrEqual(t, fills, 4)
}

func TestPaintMaskIsWhite(t *testing.T) {
	b := NewBuilder(zap.NewNop(), nil)
	z := [][]float64{
		{0, 1, 2, 3},
		{4, grid.Missing, 6, 7},
		{8, 9, 10, 11},
		{12, 13, 14, 15},
	}
	th, step := Thresholds(grid.Domain{Min: 0, Max: 15}, 3)
	l, err := b.Prepare(mustGrid(t, z), th, step, 15)
	require.NoError(t, err)

	rec := &recorder.Canvas{}
	p := &Painter{
		Canvas: rec,
		Height: 40,
		X:      axis.NewLinear(0, 3, 0, 40),
		Y:      axis.NewLinear(0, 3, 40, 0),
		Z:      grid.Domain{Min: 0, Max: 15},
		Colors: newColors(t),
	}
	require.NoError(t, p.Paint(l))

	var last color.Color
	for _, a := range rec.Actions {
		if sc, ok := a.(*recorder.SetColor); ok {
			last = sc.Color
		}
	}
	assert.Equal(t, MaskColor, last)
}

func TestMaskCoversOnlyNeighbours(t *testing.T) {
	b := NewBuilder(zap.NewNop(), nil)
	z := [][]float64{
		{0, 1, 2, 3},
		{4, grid.Missing, 6, 7},
		{8, 9, 10, 11},
		{12, 13, 14, 15},
	}
	th, step := Thresholds(grid.Domain{Min: 0, Max: 15}, 3)
	l, err := b.Prepare(mustGrid(t, z), th, step, 15)
	require.NoError(t, err)

	// samples k sit at 5+10k on both axes, y pointing down; the grid
	// edge runs along the last row and column, so read just inside it
	x := axis.NewLinear(0, 3, 5, 35)
	y := axis.NewLinear(0, 3, 35, 5)
	img := b.Draw([]*Layers{l}, x, y, grid.Domain{Min: 0, Max: 15}, newColors(t), 40, 40)
	at := func(col, row int) color.NRGBA {
		px, py := 5+10*col, 35-10*row
		if col == 3 {
			px--
		}
		if row == 0 {
			py--
		}
		return img.NRGBAAt(px, py)
	}

	for row := 0; row <= 2; row++ {
		for col := 0; col <= 2; col++ {
			assert.Equal(t, MaskColor, at(col, row), "sample (%d,%d)", col, row)
		}
	}
	for _, s := range [][2]int{{3, 0}, {3, 1}, {3, 2}, {3, 3}, {0, 3}, {1, 3}, {2, 3}} {
		c := at(s[0], s[1])
		assert.NotEqual(t, MaskColor, c, "sample %v", s)
		assert.Equal(t, uint8(255), c.A, "sample %v", s)
	}
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, at(3, 3))
}

func TestSampleIndex(t *testing.T) {
	assert.Equal(t, 0.0, sampleIndex(0, 4))
	assert.Equal(t, 0.0, sampleIndex(0.5, 4))
	assert.Equal(t, 1.5, sampleIndex(2, 4))
	assert.Equal(t, 3.0, sampleIndex(3.5, 4))
	assert.Equal(t, 3.0, sampleIndex(4, 4))
}

func TestDrawRecoversPerGrid(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	fails := failures{}
	b := NewBuilder(zap.New(core), fails)

	th, step := Thresholds(grid.Domain{Min: 0, Max: 20}, 4)
	good, err := b.Prepare(mustGrid(t, threeByThree), th, step, 20)
	require.NoError(t, err)
	// no grid to map vertices through
	bad := &Layers{Base: Band{Polygons: []Polygon{{Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}}}

	img := b.Draw([]*Layers{bad, nil, good},
		axis.NewLinear(0, 2, 0, 30), axis.NewLinear(0, 2, 30, 0),
		grid.Domain{Min: 0, Max: 20}, newColors(t), 30, 30)

	assert.Equal(t, 1, fails["fill"])
	assert.Equal(t, 1, logs.FilterMessage("failed to plot contour").Len())
	assert.Equal(t, uint8(255), img.NRGBAAt(15, 15).A)
}

func TestPrepareAllSkipsFailures(t *testing.T) {
	fails := failures{}
	b := NewBuilder(zap.NewNop(), fails)
	b.Smooth = panicking{}
	th, step := Thresholds(grid.Domain{Min: 0, Max: 20}, 4)

	out := b.PrepareAll([]*grid.Grid{mustGrid(t, threeByThree)}, th, step, 20)
	require.Len(t, out, 1)
	assert.Nil(t, out[0])
	assert.Equal(t, 1, fails["prepare"])
}

type panicking struct{}

func (panicking) Isobands([]float64, int, int, []float64) []Band { panic("boom") }
