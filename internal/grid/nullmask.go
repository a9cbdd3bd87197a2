package grid

import "gonum.org/v1/gonum/mat"

// NullMask returns a copy of g in which every non-numeric cell and its
// eight neighbours hold sentinel. Contouring the copy above the data
// domain yields polygons covering the missing regions of g.
func NullMask(g *Grid, sentinel float64) *Grid {
	rows, cols := g.Dims()
	z := mat.DenseCopyOf(g.Z)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if IsNumeric(g.Z.At(r, c)) {
				continue
			}
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					rr, cc := r+dr, c+dc
					if rr < 0 || rr >= rows || cc < 0 || cc >= cols {
						continue
					}
					z.Set(rr, cc, sentinel)
				}
			}
		}
	}
	return &Grid{X: g.X, Y: g.Y, Z: z, XTime: g.XTime, YTime: g.YTime}
}

// HasMissing reports whether any cell of g is non-numeric.
func (g *Grid) HasMissing() bool {
	for _, v := range g.Z.RawMatrix().Data {
		if !IsNumeric(v) {
			return true
		}
	}
	return false
}
