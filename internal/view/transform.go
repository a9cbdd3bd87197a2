// Package view keeps the per-axis zoom state of a rendering session and
// composes pan and zoom gestures against it.
package view

import (
	"fmt"

	"github.com/dblueman/heatcanvas/internal/axis"
)

// Transform is an affine zoom: a point p maps to p*K + (X, Y).
type Transform struct {
	K, X, Y float64
}

// Identity is the transform that leaves every point in place.
var Identity = Transform{K: 1}

// IsIdentity reports whether t is Identity.
func (t Transform) IsIdentity() bool { return t == Identity }

// Apply maps a point through t.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a transformed point back.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return t.InvertX(x), t.InvertY(y)
}

// InvertX maps a transformed x coordinate back.
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }

// InvertY maps a transformed y coordinate back.
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Inverse returns the transform undoing t.
func (t Transform) Inverse() Transform {
	return Transform{K: 1 / t.K, X: -t.X / t.K, Y: -t.Y / t.K}
}

// Translate moves the transform by (x, y) in untransformed units.
func (t Transform) Translate(x, y float64) Transform {
	return Transform{K: t.K, X: t.X + t.K*x, Y: t.Y + t.K*y}
}

// ScaleAt zooms by factor k keeping the point (px, py) fixed.
func (t Transform) ScaleAt(k, px, py float64) Transform {
	x0, y0 := t.Invert(px, py)
	nk := t.K * k
	return Transform{K: nk, X: px - x0*nk, Y: py - y0*nk}
}

// RescaleX returns a copy of s whose domain is the preimage of its
// range under t, so that s' = t∘s along x.
func (t Transform) RescaleX(s axis.Scale) axis.Scale {
	r0, r1 := s.Range()
	return s.WithDomain(s.Invert(t.InvertX(r0)), s.Invert(t.InvertX(r1)))
}

// RescaleY is RescaleX along y.
func (t Transform) RescaleY(s axis.Scale) axis.Scale {
	r0, r1 := s.Range()
	return s.WithDomain(s.Invert(t.InvertY(r0)), s.Invert(t.InvertY(r1)))
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}
