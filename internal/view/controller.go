package view

import (
	"math"

	"github.com/dblueman/heatcanvas/internal/axis"
)

// Channel selects which axes a gesture affects.
type Channel int

const (
	Both Channel = iota
	XOnly
	YOnly
)

func (c Channel) String() string {
	switch c {
	case XOnly:
		return "x"
	case YOnly:
		return "y"
	default:
		return "xy"
	}
}

// AxisState holds the scales of one axis.
type AxisState struct {
	// Current is the live scale used for drawing.
	Current axis.Scale
	// Reference is the last committed scale. Gestures compose against it.
	Reference axis.Scale
	// Original is the scale restored by a reset.
	Original axis.Scale
}

func newAxisState(s axis.Scale) AxisState {
	return AxisState{Current: s, Reference: s, Original: s}
}

// Gesture accumulates pan and zoom input of one channel into a pending
// transform. Focal points are clamped to the gesture's pixel extent and
// the pending zoom factor to its scale extent.
type Gesture struct {
	Width, Height float64
	MinScale      float64
	MaxScale      float64

	pending Transform
}

// Pending returns the transform accumulated since the last commit.
func (g *Gesture) Pending() Transform { return g.pending }

// Set replaces the pending transform, as produced by an external event
// source.
func (g *Gesture) Set(t Transform) {
	g.pending = t
	g.constrain()
}

// ZoomAt zooms by factor about the pixel (px, py).
func (g *Gesture) ZoomAt(factor, px, py float64) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	px = math.Max(0, math.Min(g.Width, px))
	py = math.Max(0, math.Min(g.Height, py))
	k := g.clampScale(g.pending.K * factor)
	g.pending = g.pending.ScaleAt(k/g.pending.K, px, py)
}

// Zoom zooms by factor about the centre of the extent.
func (g *Gesture) Zoom(factor float64) {
	g.ZoomAt(factor, g.Width/2, g.Height/2)
}

// Pan moves the content by (dx, dy) pixels.
func (g *Gesture) Pan(dx, dy float64) {
	g.pending = Transform{K: g.pending.K, X: g.pending.X + dx, Y: g.pending.Y + dy}
}

func (g *Gesture) clampScale(k float64) float64 {
	if g.MinScale > 0 {
		k = math.Max(k, g.MinScale)
	}
	if g.MaxScale > 0 {
		k = math.Min(k, g.MaxScale)
	}
	return k
}

func (g *Gesture) constrain() {
	if !(g.pending.K > 0) {
		g.pending = Identity
		return
	}
	k := g.clampScale(g.pending.K)
	if k != g.pending.K {
		g.pending = g.pending.ScaleAt(k/g.pending.K, g.Width/2, g.Height/2)
	}
}

// RedrawFunc renders the view with the given scales.
type RedrawFunc func(x, y axis.Scale)

// Controller owns the axis state of a session and the three gesture
// channels acting on it.
type Controller struct {
	X, Y AxisState

	gestures [3]Gesture
	redraw   RedrawFunc
}

// NewController starts with x and y as the original scales of a
// width×height canvas. redraw may be nil.
func NewController(x, y axis.Scale, width, height int, redraw RedrawFunc) *Controller {
	c := &Controller{X: newAxisState(x), Y: newAxisState(y), redraw: redraw}
	for i := range c.gestures {
		c.gestures[i] = Gesture{
			Width:    float64(width),
			Height:   float64(height),
			MinScale: 1e-3,
			MaxScale: 1e3,
			pending:  Identity,
		}
	}
	return c
}

// SetRedraw replaces the redraw callback.
func (c *Controller) SetRedraw(f RedrawFunc) { c.redraw = f }

// Gesture returns the gesture of channel ch.
func (c *Controller) Gesture(ch Channel) *Gesture { return &c.gestures[ch] }

// Preview returns the scales the view would have if ch were committed
// now. The state is not modified.
func (c *Controller) Preview(ch Channel) (x, y axis.Scale) {
	t := c.gestures[ch].pending
	x, y = c.X.Reference, c.Y.Reference
	if t.IsIdentity() {
		return c.X.Current, c.Y.Current
	}
	if ch != YOnly {
		x = t.RescaleX(x)
	}
	if ch != XOnly {
		y = t.RescaleY(y)
	}
	return x, y
}

// Commit applies the pending transform of ch to the reference scales of
// the affected axes, redraws, makes the result the new reference and
// returns the gesture to identity. It reports whether anything changed.
func (c *Controller) Commit(ch Channel) bool {
	g := &c.gestures[ch]
	if g.pending.IsIdentity() {
		return false
	}
	c.X.Current, c.Y.Current = c.Preview(ch)
	c.draw()
	c.X.Reference = c.X.Current
	c.Y.Reference = c.Y.Current
	g.pending = Identity
	return true
}

// Apply sets the pending transform of ch to t and commits it.
func (c *Controller) Apply(ch Channel, t Transform) bool {
	c.gestures[ch].Set(t)
	return c.Commit(ch)
}

// Reset restores the original scales on both axes, clears every
// pending gesture and redraws.
func (c *Controller) Reset() {
	for i := range c.gestures {
		c.gestures[i].pending = Identity
	}
	c.X.Current, c.X.Reference = c.X.Original, c.X.Original
	c.Y.Current, c.Y.Reference = c.Y.Original, c.Y.Original
	c.draw()
}

// Redraw renders the current view.
func (c *Controller) Redraw() { c.draw() }

func (c *Controller) draw() {
	if c.redraw != nil {
		c.redraw(c.X.Current, c.Y.Current)
	}
}
