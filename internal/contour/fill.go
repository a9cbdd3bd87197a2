package contour

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/grid"
)

// MaskColor fills the missing-data mask.
var MaskColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Painter fills prepared layers onto a vg.Canvas whose origin is the
// bottom left corner of a Width×Height pixel area.
type Painter struct {
	Canvas vg.Canvas
	Height float64

	X, Y   axis.Scale
	Z      grid.Domain
	Colors *colorscale.Scale
}

// Paint fills the base band, the main bands above the lowest threshold,
// then the mask. A panic while filling is returned as an error.
func (p *Painter) Paint(l *Layers) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("contour: fill: %v", r)
		}
	}()
	p.fill(l.Grid, l.Base, p.bandColor(l.Base.Value+l.Step))
	for i, b := range l.Main {
		if i == 0 {
			continue
		}
		p.fill(l.Grid, b, p.bandColor(b.Value+l.Step))
	}
	p.fill(l.Grid, l.Mask, MaskColor)
	return nil
}

// bandColor is the scale colour at v. Rounding past Z.Max in the
// threshold arithmetic snaps back to Z.Max; bands genuinely outside Z
// stay transparent.
func (p *Painter) bandColor(v float64) color.NRGBA {
	if v > p.Z.Max && v-p.Z.Max <= 1e-9*p.Z.Span() {
		v = p.Z.Max
	}
	return p.Colors.Color(v, p.Z.Min, p.Z.Max)
}

func (p *Painter) fill(g *grid.Grid, b Band, c color.Color) {
	if len(b.Polygons) == 0 {
		return
	}
	p.Canvas.SetColor(c)
	for _, poly := range b.Polygons {
		var path vg.Path
		for _, r := range poly {
			p.ring(&path, g, r)
		}
		if len(path) > 0 {
			p.Canvas.Fill(path)
		}
	}
}

// ring appends r to path. Rings with a vertex that does not project to
// a finite pixel are dropped.
func (p *Painter) ring(path *vg.Path, g *grid.Grid, r Ring) {
	if len(r) < 3 {
		return
	}
	pts := make([]vg.Point, len(r))
	for i, q := range r {
		if math.IsNaN(q.X) || math.IsNaN(q.Y) {
			return
		}
		x := p.X.Forward(g.XAtIndex(sampleIndex(q.X, len(g.X))))
		y := p.Y.Forward(g.YAtIndex(sampleIndex(q.Y, len(g.Y))))
		if !grid.IsNumeric(x) || !grid.IsNumeric(y) {
			return
		}
		pts[i] = vg.Point{X: vg.Length(x), Y: vg.Length(p.Height - y)}
	}
	path.Move(pts[0])
	for _, pt := range pts[1:] {
		path.Line(pt)
	}
	path.Close()
}

// sampleIndex converts a cell-space coordinate, where sample k sits at
// k+0.5, to a fractional sample index clamped to the n samples.
func sampleIndex(c float64, n int) float64 {
	return math.Max(0, math.Min(c-0.5, float64(n-1)))
}

// Draw fills every prepared grid onto a transparent width×height raster
// and returns it. Grids whose layers are nil or fail to fill are
// skipped; failures are logged and recorded on b.
func (b *Builder) Draw(layers []*Layers, x, y axis.Scale, z grid.Domain, colors *colorscale.Scale, width, height int) *image.NRGBA {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(int(vg.Inch)), // one point per pixel
		vgimg.UseBackgroundColor(color.Transparent),
	)
	p := &Painter{Canvas: c, Height: float64(height), X: x, Y: y, Z: z, Colors: colors}
	for i, l := range layers {
		if l == nil {
			continue
		}
		if err := p.Paint(l); err != nil {
			b.fail("fill", i, err)
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := c.Image()
	draw.Draw(out, out.Rect, src, src.Bounds().Min, draw.Src)
	return out
}
