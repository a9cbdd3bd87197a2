package contour

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/dblueman/heatcanvas/internal/grid"
)

// Thresholds returns n evenly spaced band thresholds starting at d.Min
// and stopping one step short of d.Max, together with the step. A
// degenerate or invalid domain yields the single threshold d.Min.
func Thresholds(d grid.Domain, n int) ([]float64, float64) {
	if n < 1 || !d.Valid() || !(d.Max > d.Min) {
		return []float64{d.Min}, 0
	}
	t := floats.Span(make([]float64, n+1), d.Min, d.Max)
	return t[:n], (d.Max - d.Min) / float64(n)
}

// MaskLevels returns the value written over missing regions and the
// threshold at which those regions are traced. Both lie above zMax,
// with the threshold below the sentinel.
func MaskLevels(zMax float64) (sentinel, threshold float64) {
	span := math.Max(math.Abs(zMax), 1)
	return zMax + span*1000, zMax + span*10
}

// Layers is the prepared contour geometry of one grid.
type Layers struct {
	Grid *grid.Grid

	// Base is the band at the lowest threshold, traced without smoothing.
	Base Band
	// Main holds one smoothed band per threshold.
	Main []Band
	// Mask covers missing cells and their neighbours. It is empty when
	// the grid has no missing cell.
	Mask Band

	Step float64
}

// FailureRecorder counts contour failures.
type FailureRecorder interface {
	ContourFailure(stage string)
}

// Builder prepares Layers for grids.
type Builder struct {
	Smooth Generator
	Raw    Generator

	log *zap.Logger
	rec FailureRecorder
}

// NewBuilder returns a Builder using marching squares for both the
// smoothed and raw layers. rec may be nil.
func NewBuilder(log *zap.Logger, rec FailureRecorder) *Builder {
	return &Builder{
		Smooth: MarchingSquares{Smooth: true},
		Raw:    MarchingSquares{},
		log:    log.Named("contour"),
		rec:    rec,
	}
}

// Prepare computes the layers of g. zMax is the top of the colour
// domain and positions the missing-data mask above it.
func (b *Builder) Prepare(g *grid.Grid, thresholds []float64, step, zMax float64) (l *Layers, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("contour: prepare: %v", r)
		}
	}()
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("contour: prepare: no thresholds")
	}

	rows, cols := g.Dims()
	values := g.Values()
	l = &Layers{Grid: g, Step: step}
	l.Base = b.Raw.Isobands(values, cols, rows, thresholds[:1])[0]
	l.Main = b.Smooth.Isobands(values, cols, rows, thresholds)
	if g.HasMissing() {
		sentinel, level := MaskLevels(zMax)
		masked := grid.NullMask(g, sentinel)
		l.Mask = b.Raw.Isobands(masked.Values(), cols, rows, []float64{level})[0]
	}
	return l, nil
}

// PrepareAll prepares every grid. A grid that fails is logged and left
// nil in the result so the others still render.
func (b *Builder) PrepareAll(grids []*grid.Grid, thresholds []float64, step, zMax float64) []*Layers {
	out := make([]*Layers, len(grids))
	for i, g := range grids {
		l, err := b.Prepare(g, thresholds, step, zMax)
		if err != nil {
			b.fail("prepare", i, err)
			continue
		}
		out[i] = l
	}
	return out
}

func (b *Builder) fail(stage string, i int, err error) {
	b.log.Error("failed to plot contour", zap.String("stage", stage), zap.Int("grid", i), zap.Error(err))
	if b.rec != nil {
		b.rec.ContourFailure(stage)
	}
}
