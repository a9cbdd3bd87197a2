package raster

import (
	"image"
	"math"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/grid"
)

// Request describes one rasterization of a set of grids.
type Request struct {
	Grids []*grid.Grid

	// X and Y map data coordinates to pixels.
	X, Y axis.Scale
	// XDomain and YDomain bound the data. Pixels outside their
	// projection are never painted.
	XDomain, YDomain grid.Domain

	Width, Height int

	// Z is the colour domain.
	Z      grid.Domain
	Colors *colorscale.Scale
}

// Rect is a half-open pixel rectangle [X0,X1)×[Y0,Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether r covers no pixel.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

func (r Rect) intersect(o Rect) Rect {
	return Rect{
		X0: max(r.X0, o.X0),
		Y0: max(r.Y0, o.Y0),
		X1: min(r.X1, o.X1),
		Y1: min(r.Y1, o.Y1),
	}
}

// Window returns the pixel rectangle covered by the projected data
// domains, clipped to the canvas. Reversed ranges are handled by taking
// the smaller projected bound as the start.
func (req Request) Window() Rect {
	x0, x1 := span(req.X, req.XDomain, req.Width)
	y0, y1 := span(req.Y, req.YDomain, req.Height)
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func span(s axis.Scale, d grid.Domain, extent int) (lo, hi int) {
	p0, p1 := s.Forward(d.Min), s.Forward(d.Max)
	if !finite(p0) || !finite(p1) {
		return 0, extent
	}
	lo = max(0, int(math.Floor(math.Min(p0, p1))))
	hi = min(extent, int(math.Floor(math.Max(p0, p1))))
	return lo, hi
}

// Rasterize fills a Width×Height buffer with the colour of the nearest
// sample of each grid. Later grids overwrite earlier ones where their
// pixel rectangles overlap. Pixels not covered by any grid stay
// transparent.
func Rasterize(req Request) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, req.Width, req.Height))
	win := req.Window()
	if win.Empty() {
		return img
	}
	if len(req.Grids) == 1 {
		g := req.Grids[0]
		px, py := Project(g.X, req.X), Project(g.Y, req.Y)
		paint(img, req, g, win, px.Table(win.X0, win.X1), py.Table(win.Y0, win.Y1))
		return img
	}
	for _, g := range req.Grids {
		px, py := Project(g.X, req.X), Project(g.Y, req.Y)
		r, ok := GridRect(px, py, req.Width, req.Height)
		if !ok {
			continue
		}
		r = r.intersect(win)
		if r.Empty() {
			continue
		}
		paint(img, req, g, r, px.Table(r.X0, r.X1), py.Table(r.Y0, r.Y1))
	}
	return img
}

// GridRect returns the pixel rectangle spanned by a grid's projected
// samples, clipped to the canvas.
func GridRect(px, py *Projection, width, height int) (Rect, bool) {
	x0, x1, okx := px.Extent()
	y0, y1, oky := py.Extent()
	if !okx || !oky {
		return Rect{}, false
	}
	return Rect{
		X0: max(0, int(math.Ceil(x0))),
		Y0: max(0, int(math.Ceil(y0))),
		X1: min(width, int(math.Floor(x1))),
		Y1: min(height, int(math.Floor(y1))),
	}, true
}

func paint(img *image.NRGBA, req Request, g *grid.Grid, r Rect, cols, rows []int) {
	for j, row := range rows {
		if row < 0 {
			continue
		}
		y := r.Y0 + j
		for i, col := range cols {
			if col < 0 {
				continue
			}
			c := req.Colors.Color(g.At(row, col), req.Z.Min, req.Z.Max)
			o := img.PixOffset(r.X0+i, y)
			img.Pix[o+0] = c.R
			img.Pix[o+1] = c.G
			img.Pix[o+2] = c.B
			img.Pix[o+3] = c.A
		}
	}
}
