package colorscale

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// ColorMap adapts a Scale to gonum/plot's palette.ColorMap so legends
// drawn by plot use the same gradient as the rendered grids.
type ColorMap struct {
	scale    *Scale
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*ColorMap)(nil)

// ColorMap returns a palette.ColorMap over [min, max].
func (s *Scale) ColorMap(min, max float64) *ColorMap {
	return &ColorMap{scale: s, min: min, max: max, alpha: 1}
}

// At implements palette.ColorMap.
func (m *ColorMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v > m.max:
		return nil, palette.ErrOverflow
	case v < m.min:
		return nil, palette.ErrUnderflow
	}
	c := m.scale.Color(v, m.min, m.max)
	c.A = uint8(math.Round(float64(c.A) * m.alpha))
	return c, nil
}

func (m *ColorMap) Max() float64     { return m.max }
func (m *ColorMap) SetMax(v float64) { m.max = v }
func (m *ColorMap) Min() float64     { return m.min }
func (m *ColorMap) SetMin(v float64) { m.min = v }
func (m *ColorMap) Alpha() float64   { return m.alpha }

// SetAlpha implements palette.ColorMap. It panics if alpha is outside [0,1].
func (m *ColorMap) SetAlpha(alpha float64) {
	if alpha < 0 || alpha > 1 {
		panic(fmt.Sprintf("colorscale: invalid alpha %g", alpha))
	}
	m.alpha = alpha
}

// Palette implements palette.ColorMap.
func (m *ColorMap) Palette(n int) palette.Palette {
	cols := make(paletteColors, n)
	for i := range cols {
		v := m.max
		if n > 1 && i < n-1 {
			v = m.min + (m.max-m.min)*float64(i)/float64(n-1)
		}
		c, err := m.At(v)
		if err != nil {
			c = color.Transparent
		}
		cols[i] = c
	}
	return cols
}

type paletteColors []color.Color

func (p paletteColors) Colors() []color.Color { return p }
