// Package raster turns grids into RGBA pixel buffers by nearest-sample
// lookup and composites them onto a surface.
package raster

import (
	"math"
	"sort"

	"github.com/dblueman/heatcanvas/internal/axis"
)

// NearestIndex returns the index of the position closest to target.
// Ties go to the lowest index and non-finite positions are skipped.
// It returns -1 when no position is finite.
func NearestIndex(target float64, positions []float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, p := range positions {
		if !finite(p) {
			continue
		}
		if d := math.Abs(p - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Projection holds the pixel positions of the samples along one grid
// axis. Lookups use binary search when the finite positions are
// monotonic and fall back to NearestIndex otherwise; both choose the
// same index.
type Projection struct {
	pos []float64

	// finite positions, multiplied by sign so they never decrease,
	// with their sample indices
	key  []float64
	idx  []int
	sign float64

	monotonic bool
}

// Project maps coords through s.
func Project(coords []float64, s axis.Scale) *Projection {
	pos := make([]float64, len(coords))
	for i, c := range coords {
		pos[i] = s.Forward(c)
	}
	return NewProjection(pos)
}

// NewProjection indexes already projected pixel positions.
func NewProjection(pos []float64) *Projection {
	p := &Projection{pos: pos, sign: 1}
	for i, v := range pos {
		if finite(v) {
			p.key = append(p.key, v)
			p.idx = append(p.idx, i)
		}
	}
	if len(p.key) > 1 && p.key[len(p.key)-1] < p.key[0] {
		p.sign = -1
	}
	p.monotonic = true
	for i := range p.key {
		p.key[i] *= p.sign
		if i > 0 && p.key[i] < p.key[i-1] {
			p.monotonic = false
		}
	}
	return p
}

// Extent returns the smallest and largest finite position. ok is false
// when there is none.
func (p *Projection) Extent() (lo, hi float64, ok bool) {
	if len(p.key) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, i := range p.idx {
		lo = math.Min(lo, p.pos[i])
		hi = math.Max(hi, p.pos[i])
	}
	return lo, hi, true
}

// Nearest returns the sample index closest to the pixel coordinate
// target, or -1 if no sample projects to a finite position.
func (p *Projection) Nearest(target float64) int {
	if !p.monotonic {
		return NearestIndex(target, p.pos)
	}
	n := len(p.key)
	if n == 0 {
		return -1
	}
	t := target * p.sign
	k := sort.SearchFloat64s(p.key, t)
	if k == 0 {
		return p.idx[0]
	}
	if k == n {
		return p.idx[p.first(n-1)]
	}
	lo := p.first(k - 1)
	if t-p.key[lo] <= p.key[k]-t {
		return p.idx[lo]
	}
	return p.idx[k]
}

// first returns the lowest k whose key equals key[k].
func (p *Projection) first(k int) int {
	return sort.SearchFloat64s(p.key, p.key[k])
}

// Table returns the nearest sample index for every pixel coordinate in
// [from, to). Entry i belongs to pixel from+i.
func (p *Projection) Table(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, to-from)
	for i := range out {
		out[i] = p.Nearest(float64(from + i))
	}
	return out
}
