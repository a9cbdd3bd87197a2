// Package axis provides the continuous scale functions mapping data
// coordinates to pixel coordinates along one axis.
package axis

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for an unrecognised name.
var ErrUnknownKind = errors.New("axis: unknown scale kind")

// Kind selects the transform applied to domain values before the linear
// mapping onto the pixel range.
type Kind int

const (
	Linear Kind = iota
	Log
	Time // Unix seconds, mapped linearly
)

func (k Kind) String() string {
	switch k {
	case Log:
		return "log"
	case Time:
		return "time"
	default:
		return "linear"
	}
}

// ParseKind converts "linear", "log" or "time" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "log":
		return Log, nil
	case "time":
		return Time, nil
	}
	return Linear, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Scale maps a domain interval onto a pixel range and back.
type Scale interface {
	// Forward maps a domain value to a pixel coordinate.
	Forward(v float64) float64
	// Invert maps a pixel coordinate to a domain value.
	Invert(px float64) float64
	Domain() (d0, d1 float64)
	Range() (r0, r1 float64)
	Kind() Kind
	// WithDomain returns a copy of the scale over a new domain.
	WithDomain(d0, d1 float64) Scale
}

type continuous struct {
	kind   Kind
	d0, d1 float64
	r0, r1 float64
}

// New returns a scale of the given kind mapping [d0,d1] onto [r0,r1].
// Reversed axes are expressed by a reversed range.
func New(kind Kind, d0, d1, r0, r1 float64) Scale {
	return continuous{kind: kind, d0: d0, d1: d1, r0: r0, r1: r1}
}

// NewLinear is New(Linear, ...).
func NewLinear(d0, d1, r0, r1 float64) Scale { return New(Linear, d0, d1, r0, r1) }

// NewLog is New(Log, ...). Non-positive domain values map to NaN.
func NewLog(d0, d1, r0, r1 float64) Scale { return New(Log, d0, d1, r0, r1) }

// NewTime is New(Time, ...) over Unix seconds.
func NewTime(d0, d1, r0, r1 float64) Scale { return New(Time, d0, d1, r0, r1) }

func (s continuous) transform(v float64) float64 {
	if s.kind == Log {
		if v <= 0 {
			return math.NaN()
		}
		return math.Log(v)
	}
	return v
}

func (s continuous) untransform(v float64) float64 {
	if s.kind == Log {
		return math.Exp(v)
	}
	return v
}

func (s continuous) Forward(v float64) float64 {
	t0, t1 := s.transform(s.d0), s.transform(s.d1)
	t := 0.5
	if d := t1 - t0; d != 0 {
		t = (s.transform(v) - t0) / d
	}
	return s.r0 + t*(s.r1-s.r0)
}

func (s continuous) Invert(px float64) float64 {
	t0, t1 := s.transform(s.d0), s.transform(s.d1)
	t := 0.0
	if d := s.r1 - s.r0; d != 0 {
		t = (px - s.r0) / d
	}
	return s.untransform(t0 + t*(t1-t0))
}

func (s continuous) Domain() (float64, float64) { return s.d0, s.d1 }
func (s continuous) Range() (float64, float64)  { return s.r0, s.r1 }
func (s continuous) Kind() Kind                 { return s.kind }

func (s continuous) WithDomain(d0, d1 float64) Scale {
	s.d0, s.d1 = d0, d1
	return s
}

// Equal reports whether a and b have the same kind, range, and a domain
// equal within tol relative to the domain span.
func Equal(a, b Scale, tol float64) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ar0, ar1 := a.Range()
	br0, br1 := b.Range()
	if ar0 != br0 || ar1 != br1 {
		return false
	}
	ad0, ad1 := a.Domain()
	bd0, bd1 := b.Domain()
	span := math.Max(math.Abs(ad1-ad0), math.SmallestNonzeroFloat64)
	return math.Abs(ad0-bd0) <= tol*span && math.Abs(ad1-bd1) <= tol*span
}
