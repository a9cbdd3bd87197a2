package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Domain is a closed [Min, Max] interval.
type Domain struct {
	Min, Max float64
}

// Valid reports whether both bounds are numeric.
func (d Domain) Valid() bool {
	return IsNumeric(d.Min) && IsNumeric(d.Max)
}

// Contains reports whether v lies inside the domain.
func (d Domain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// Span returns Max - Min.
func (d Domain) Span() float64 {
	return d.Max - d.Min
}

// Extents holds the combined and per-file domains of a set of grids.
type Extents struct {
	X, Y, Z Domain

	// XFiles and YFiles contain one entry per distinct file domain.
	// ZFiles contains one entry per grid.
	XFiles, YFiles, ZFiles []Domain
}

// ComputeExtents returns the domains of grids. A file domain is only
// recorded when neither of its bounds coincides with a domain already seen.
func ComputeExtents(grids []*Grid) Extents {
	var e Extents
	for _, g := range grids {
		e.XFiles = appendDistinct(e.XFiles, extent(g.X))
		e.YFiles = appendDistinct(e.YFiles, extent(g.Y))
		e.ZFiles = append(e.ZFiles, extent(g.Values()))
	}
	e.X = combine(e.XFiles)
	e.Y = combine(e.YFiles)
	e.Z = combine(e.ZFiles)
	return e
}

// extent returns the domain of the numeric values in v. The result is
// {NaN, NaN} when v holds no numeric value.
func extent(v []float64) Domain {
	finite := make([]float64, 0, len(v))
	for _, x := range v {
		if IsNumeric(x) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return Domain{Min: math.NaN(), Max: math.NaN()}
	}
	return Domain{Min: floats.Min(finite), Max: floats.Max(finite)}
}

func appendDistinct(ds []Domain, d Domain) []Domain {
	for _, o := range ds {
		if o.Min == d.Min || o.Max == d.Max {
			return ds
		}
	}
	return append(ds, d)
}

func combine(ds []Domain) Domain {
	lo := make([]float64, 0, len(ds))
	hi := make([]float64, 0, len(ds))
	for _, d := range ds {
		if d.Valid() {
			lo = append(lo, d.Min)
			hi = append(hi, d.Max)
		}
	}
	if len(lo) == 0 {
		return Domain{Min: math.NaN(), Max: math.NaN()}
	}
	return Domain{Min: floats.Min(lo), Max: floats.Max(hi)}
}
