package heatmap

import (
	"fmt"
	"strings"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/grid"
	"github.com/dblueman/heatcanvas/internal/raster"
)

// Sample is the data point under a pixel of the current view.
type Sample struct {
	Grid   int
	Col    int
	Row    int
	X, Y   float64
	Z      float64
	PixelX float64
	PixelY float64
}

// Probe returns the sample closest to pixel (px, py) of the current view.
// The dataset is chosen by locating the data coordinates in the per-file
// domains; ok is false when the pixel lies outside every dataset.
func (s *Session) Probe(px, py float64) (Sample, bool) {
	xs, ys := s.view.X.Current, s.view.Y.Current
	hx, hy := xs.Invert(px), ys.Invert(py)

	xi, yi := fileIndex(s.extents.XFiles, hx), fileIndex(s.extents.YFiles, hy)
	if xi < 0 || yi < 0 {
		return Sample{}, false
	}
	idx := max(xi, yi)
	if idx >= len(s.grids) {
		return Sample{}, false
	}

	g := s.grids[idx]
	col := raster.NearestIndex(hx, g.X)
	row := raster.NearestIndex(hy, g.Y)
	if col < 0 || row < 0 {
		return Sample{}, false
	}
	return Sample{
		Grid:   idx,
		Col:    col,
		Row:    row,
		X:      g.X[col],
		Y:      g.Y[row],
		Z:      g.At(row, col),
		PixelX: xs.Forward(g.X[col]),
		PixelY: ys.Forward(g.Y[row]),
	}, true
}

func fileIndex(domains []grid.Domain, v float64) int {
	for i, d := range domains {
		if d.Contains(v) {
			return i
		}
	}
	return -1
}

// Tooltip formats a sample as x, y and z lines with the configured units.
// Temporal axes are printed as dates.
func (s *Session) Tooltip(sm Sample) string {
	xk, yk := s.view.X.Current.Kind(), s.view.Y.Current.Kind()
	var b strings.Builder
	fmt.Fprintf(&b, "x: %s\n", withUnit(axis.FormatValue(xk, sm.X), s.opts.XUnit, xk))
	fmt.Fprintf(&b, "y: %s\n", withUnit(axis.FormatValue(yk, sm.Y), s.opts.YUnit, yk))
	fmt.Fprintf(&b, "z: %s", withUnit(axis.FormatNumber(sm.Z, 3), s.opts.ZUnit, axis.Linear))
	return b.String()
}

func withUnit(v, unit string, k axis.Kind) string {
	if unit == "" || k == axis.Time {
		return v
	}
	return v + " " + unit
}
