// Package grid holds the rectangular sample grids rendered by heatcanvas and
// the pure data transformations applied to them before rendering.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidGrid is returned when a dataset does not have the
// {x, y, z} shape required for rendering.
var ErrInvalidGrid = errors.New("invalid grid")

// Missing marks a cell without a value.
var Missing = math.NaN()

// IsNumeric reports whether v is a usable sample value.
// NaN and ±Inf are treated as missing.
func IsNumeric(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Grid is a z-sample matrix addressed by monotonic x (columns) and
// y (rows) coordinates. Temporal axes hold Unix seconds.
type Grid struct {
	X     []float64
	Y     []float64
	Z     *mat.Dense
	XTime bool
	YTime bool
}

// New validates the shape of a dataset and builds a Grid from it.
// z is indexed z[row][col], with len(z) == len(y) and len(z[row]) == len(x).
func New(x, y []float64, z [][]float64) (*Grid, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: x is empty", ErrInvalidGrid)
	}
	if len(y) == 0 {
		return nil, fmt.Errorf("%w: y is empty", ErrInvalidGrid)
	}
	if len(z) != len(y) {
		return nil, fmt.Errorf("%w: y has %d values but z has %d rows", ErrInvalidGrid, len(y), len(z))
	}
	if err := checkMonotonic("x", x); err != nil {
		return nil, err
	}
	if err := checkMonotonic("y", y); err != nil {
		return nil, err
	}

	data := make([]float64, 0, len(x)*len(y))
	for r, row := range z {
		if len(row) != len(x) {
			return nil, fmt.Errorf("%w: x has %d values but z row %d has %d", ErrInvalidGrid, len(x), r, len(row))
		}
		data = append(data, row...)
	}

	return &Grid{
		X: append([]float64(nil), x...),
		Y: append([]float64(nil), y...),
		Z: mat.NewDense(len(y), len(x), data),
	}, nil
}

func checkMonotonic(name string, v []float64) error {
	for i, c := range v {
		if !IsNumeric(c) {
			return fmt.Errorf("%w: %s[%d] is not numeric", ErrInvalidGrid, name, i)
		}
	}
	if len(v) < 2 {
		return nil
	}
	asc := v[1] > v[0]
	for i := 1; i < len(v); i++ {
		if (asc && v[i] <= v[i-1]) || (!asc && v[i] >= v[i-1]) {
			return fmt.Errorf("%w: %s is not strictly monotonic at index %d", ErrInvalidGrid, name, i)
		}
	}
	return nil
}

// Dims returns the number of rows (len(Y)) and columns (len(X)).
func (g *Grid) Dims() (rows, cols int) {
	return g.Z.Dims()
}

// At returns z[row][col].
func (g *Grid) At(row, col int) float64 {
	return g.Z.At(row, col)
}

// Values returns a row-major copy of the z samples.
func (g *Grid) Values() []float64 {
	rows, cols := g.Dims()
	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		copy(out[r*cols:], g.Z.RawRowView(r))
	}
	return out
}

// XAtIndex maps a fractional column index to an x coordinate by linear
// interpolation between the bracketing samples.
func (g *Grid) XAtIndex(f float64) float64 { return atIndex(g.X, f) }

// YAtIndex maps a fractional row index to a y coordinate.
func (g *Grid) YAtIndex(f float64) float64 { return atIndex(g.Y, f) }

func atIndex(v []float64, f float64) float64 {
	last := len(v) - 1
	if f > float64(last) {
		return v[last]
	}
	if f <= 0 {
		return v[0]
	}
	lo, hi := math.Floor(f), math.Ceil(f)
	return (v[int(hi)]-v[int(lo)])*(f-lo) + v[int(lo)]
}
