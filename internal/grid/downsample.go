package grid

import "gonum.org/v1/gonum/mat"

// Downsample decimates g so that contouring works on at most roughly
// target samples per axis. Every stride-th row and column is kept,
// starting from the first; values are not averaged. g is returned
// unchanged when it already fits or target is not positive.
func Downsample(g *Grid, target int) *Grid {
	rows, cols := g.Dims()
	if target <= 0 || (rows <= target && cols <= target) {
		return g
	}
	strideRow := max(1, rows/target)
	strideCol := max(1, cols/target)

	var x, y []float64
	for c := 0; c < cols; c += strideCol {
		x = append(x, g.X[c])
	}
	data := make([]float64, 0, len(x)*(rows/strideRow+1))
	for r := 0; r < rows; r += strideRow {
		y = append(y, g.Y[r])
		for c := 0; c < cols; c += strideCol {
			data = append(data, g.Z.At(r, c))
		}
	}

	return &Grid{
		X:     x,
		Y:     y,
		Z:     mat.NewDense(len(y), len(x), data),
		XTime: g.XTime,
		YTime: g.YTime,
	}
}
