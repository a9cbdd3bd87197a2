package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/heatmap"
	"github.com/dblueman/heatcanvas/internal/raster"
)

const legendSize = 2.5 * vg.Centimeter

// viewImage draws a rendered view between the corners of its data domain.
// The image is already projected through the view's scales, so it is
// placed without resampling.
type viewImage struct {
	img        image.Image
	xmin, xmax float64
	ymin, ymax float64
}

func (v viewImage) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	x0, x1 := trX(v.xmin), trX(v.xmax)
	y0, y1 := trY(v.ymin), trY(v.ymax)
	c.DrawImage(vg.Rectangle{
		Min: vg.Point{X: min(x0, x1), Y: min(y0, y1)},
		Max: vg.Point{X: max(x0, x1), Y: max(y0, y1)},
	}, v.img)
}

func (v viewImage) DataRange() (xmin, xmax, ymin, ymax float64) {
	return v.xmin, v.xmax, v.ymin, v.ymax
}

// Figure is the current view of a session laid out with axes, title and
// a colour bar.
type Figure struct {
	Main   *plot.Plot
	Legend *plot.Plot // nil when the colour domain is empty

	legendRight bool
}

// NewFigure builds a figure from the surface of s. s must have been
// rendered.
func NewFigure(s *heatmap.Session, log *zap.Logger) *Figure {
	o := s.Options()
	xs, ys := s.View().X.Current, s.View().Y.Current

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = axisLabel(o.XLabel, o.XUnit, xs.Kind())
	p.Y.Label.Text = axisLabel(o.YLabel, o.YUnit, ys.Kind())
	p.X.Tick.Marker = axis.Ticker(xs.Kind())
	p.Y.Tick.Marker = axis.Ticker(ys.Kind())
	if xs.Kind() == axis.Log {
		p.X.Scale = plot.LogScale{}
	}
	if ys.Kind() == axis.Log {
		p.Y.Scale = plot.LogScale{}
	}
	if o.XReverse {
		p.X.Scale = plot.InvertedScale{Normalizer: p.X.Scale}
	}
	if o.YReverse {
		p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	}
	if o.BackgroundColor != "" {
		if c, err := colorful.Hex(o.BackgroundColor); err == nil {
			p.BackgroundColor = c
		} else {
			log.Warn("invalid background colour, using white", zap.String("value", o.BackgroundColor))
		}
	}
	fontSize(p, vg.Length(o.FontSize))

	img := s.Surface().Image()
	b := img.Bounds()
	x0, x1 := xs.Domain()
	y0, y1 := ys.Domain()
	p.Add(viewImage{
		img:  img.SubImage(image.Rect(b.Min.X+raster.Inset, b.Min.Y, b.Max.X, b.Max.Y)),
		xmin: min(x0, x1), xmax: max(x0, x1),
		ymin: min(y0, y1), ymax: max(y0, y1),
	})

	f := &Figure{Main: p, legendRight: o.LegendRight}

	z := s.ZDomain()
	if !(z.Max > z.Min) {
		return f
	}
	l := plot.New()
	cb := &plotter.ColorBar{ColorMap: s.Colors().ColorMap(z.Min, z.Max), Vertical: o.LegendRight}
	l.Add(cb)
	zLabel := axisLabel(o.ZLabel, o.ZUnit, axis.Linear)
	if o.LegendRight {
		l.HideX()
		l.Y.Label.Text = zLabel
	} else {
		l.HideY()
		l.X.Label.Text = zLabel
	}
	fontSize(l, vg.Length(o.FontSize))
	f.Legend = l
	return f
}

func axisLabel(label, unit string, k axis.Kind) string {
	if k == axis.Time {
		return ""
	}
	if unit != "" {
		return strings.TrimSpace(label + " (" + unit + ")")
	}
	return label
}

func fontSize(p *plot.Plot, size vg.Length) {
	if size <= 0 {
		return
	}
	p.Title.TextStyle.Font.Size = size
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Label.TextStyle.Font.Size = size
		a.Tick.Label.Font.Size = size * 5 / 6
	}
}

// Draw lays the figure out on c.
func (f *Figure) Draw(c draw.Canvas) {
	if f.Legend == nil {
		f.Main.Draw(c)
		return
	}
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	if f.legendRight {
		f.Main.Draw(draw.Crop(c, 0, -legendSize, 0, 0))
		f.Legend.Draw(draw.Crop(c, w-legendSize, 0, 0, 0))
		return
	}
	f.Main.Draw(draw.Crop(c, 0, 0, legendSize, 0))
	f.Legend.Draw(draw.Crop(c, 0, 0, 0, legendSize-h))
}

// WriteTo draws the figure in format (png, svg, pdf, ...) and writes it
// to w.
func (f *Figure) WriteTo(w io.Writer, width, height vg.Length, format string) error {
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	f.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	return nil
}

// Save writes the figure to filename in the format named by its
// extension.
func (f *Figure) Save(width, height vg.Length, filename string) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	out, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	defer func() {
		if e := out.Close(); err == nil && e != nil {
			err = fmt.Errorf("heatmap: %w", e)
		}
	}()
	return f.WriteTo(out, width, height, format)
}

// surfacePNG writes only the rendered surface of s.
func surfacePNG(s *heatmap.Session, filename string) (err error) {
	out, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	defer func() {
		if e := out.Close(); err == nil && e != nil {
			err = fmt.Errorf("heatmap: %w", e)
		}
	}()
	return s.Surface().WritePNG(out)
}
