// Package contour builds and fills threshold isobands of a grid.
package contour

import "math"

// Point is a position in grid-cell space: x in [0,width], y in
// [0,height], with sample k centred at k+0.5.
type Point struct {
	X, Y float64
}

// Ring is a closed sequence of points. The last point repeats the first.
type Ring []Point

// Polygon is an exterior ring followed by its holes. Exteriors and
// holes wind in opposite directions, so filling a polygon as a single
// nonzero-winding path leaves the holes empty.
type Polygon []Ring

// Band is the region of a grid whose values are at or above Value.
type Band struct {
	Value    float64
	Polygons []Polygon
}

// Generator computes isobands for a row-major grid of width×height
// values, one Band per threshold.
type Generator interface {
	Isobands(values []float64, width, height int, thresholds []float64) []Band
}

// MarchingSquares is a Generator tracing the boundary of each band
// through the cells of the grid. Missing values never belong to a band.
// With Smooth set, boundary points are placed by linear interpolation
// between the neighbouring samples instead of at cell edge midpoints.
type MarchingSquares struct {
	Smooth bool
}

var _ Generator = MarchingSquares{}

type segment [2]Point

// cases indexes the boundary segments of a cell by the bit pattern of
// its corners: 1 bottom left, 2 bottom right, 4 top right, 8 top left.
var cases = [16][]segment{
	{},
	{{{1.0, 1.5}, {0.5, 1.0}}},
	{{{1.5, 1.0}, {1.0, 1.5}}},
	{{{1.5, 1.0}, {0.5, 1.0}}},
	{{{1.0, 0.5}, {1.5, 1.0}}},
	{{{1.0, 1.5}, {0.5, 1.0}}, {{1.0, 0.5}, {1.5, 1.0}}},
	{{{1.0, 0.5}, {1.0, 1.5}}},
	{{{1.0, 0.5}, {0.5, 1.0}}},
	{{{0.5, 1.0}, {1.0, 0.5}}},
	{{{1.0, 1.5}, {1.0, 0.5}}},
	{{{0.5, 1.0}, {1.0, 0.5}}, {{1.5, 1.0}, {1.0, 1.5}}},
	{{{1.5, 1.0}, {1.0, 0.5}}},
	{{{0.5, 1.0}, {1.5, 1.0}}},
	{{{1.0, 1.5}, {1.5, 1.0}}},
	{{{0.5, 1.0}, {1.0, 1.5}}},
	{},
}

// Isobands implements Generator.
func (m MarchingSquares) Isobands(values []float64, width, height int, thresholds []float64) []Band {
	bands := make([]Band, len(thresholds))
	for i, t := range thresholds {
		bands[i] = m.band(values, width, height, t)
	}
	return bands
}

func (m MarchingSquares) band(values []float64, width, height int, value float64) Band {
	b := Band{Value: value}
	if width < 1 || height < 1 || len(values) < width*height || math.IsNaN(value) {
		return b
	}

	var holes []Ring
	tr := &tracer{values: values, dx: width, dy: height, value: value}
	tr.trace(func(r Ring) {
		if m.Smooth {
			smooth(r, values, width, height, value)
		}
		if area(r) > 0 {
			b.Polygons = append(b.Polygons, Polygon{r})
		} else {
			holes = append(holes, r)
		}
	})

	for _, h := range holes {
		for i := range b.Polygons {
			if contains(b.Polygons[i][0], h) != -1 {
				b.Polygons[i] = append(b.Polygons[i], h)
				break
			}
		}
	}
	return b
}

type fragment struct {
	start, end int
	ring       Ring
}

type tracer struct {
	values []float64
	dx, dy int
	value  float64

	x, y    int
	byStart map[int]*fragment
	byEnd   map[int]*fragment
	emit    func(Ring)
}

func (t *tracer) above(i int) int {
	if t.values[i] >= t.value {
		return 1
	}
	return 0
}

func (t *tracer) cell(c int) {
	for _, s := range cases[c] {
		t.stitch(s)
	}
}

func (t *tracer) trace(emit func(Ring)) {
	t.byStart = make(map[int]*fragment)
	t.byEnd = make(map[int]*fragment)
	t.emit = emit
	dx, dy := t.dx, t.dy

	// first row, with the row above treated as empty
	t.x, t.y = -1, -1
	t1 := t.above(0)
	t.cell(t1 << 1)
	for t.x = 0; t.x < dx-1; t.x++ {
		t0 := t1
		t1 = t.above(t.x + 1)
		t.cell(t0 | t1<<1)
	}
	t.cell(t1)

	for t.y = 0; t.y < dy-1; t.y++ {
		t.x = -1
		t1 = t.above(t.y*dx + dx)
		t2 := t.above(t.y * dx)
		t.cell(t1<<1 | t2<<2)
		for t.x = 0; t.x < dx-1; t.x++ {
			t0 := t1
			t1 = t.above(t.y*dx + dx + t.x + 1)
			t3 := t2
			t2 = t.above(t.y*dx + t.x + 1)
			t.cell(t0 | t1<<1 | t2<<2 | t3<<3)
		}
		t.cell(t1 | t2<<3)
	}

	// last row, with the row below treated as empty
	t.x = -1
	t2 := t.above(t.y * dx)
	t.cell(t2 << 2)
	for t.x = 0; t.x < dx-1; t.x++ {
		t3 := t2
		t2 = t.above(t.y*dx + t.x + 1)
		t.cell(t2<<2 | t3<<3)
	}
	t.cell(t2 << 3)
}

func (t *tracer) index(p Point) int {
	return int(p.X*2 + p.Y*float64(t.dx+1)*4)
}

func (t *tracer) stitch(s segment) {
	start := Point{s[0].X + float64(t.x), s[0].Y + float64(t.y)}
	end := Point{s[1].X + float64(t.x), s[1].Y + float64(t.y)}
	si, ei := t.index(start), t.index(end)

	if f, ok := t.byEnd[si]; ok {
		if g, ok := t.byStart[ei]; ok {
			delete(t.byEnd, f.end)
			delete(t.byStart, g.start)
			if f == g {
				f.ring = append(f.ring, end)
				t.emit(f.ring)
				return
			}
			joined := &fragment{start: f.start, end: g.end, ring: append(f.ring, g.ring...)}
			t.byStart[joined.start] = joined
			t.byEnd[joined.end] = joined
			return
		}
		delete(t.byEnd, f.end)
		f.ring = append(f.ring, end)
		f.end = ei
		t.byEnd[ei] = f
		return
	}

	if f, ok := t.byStart[ei]; ok {
		delete(t.byStart, f.start)
		f.ring = append(Ring{start}, f.ring...)
		f.start = si
		t.byStart[si] = f
		return
	}

	f := &fragment{start: si, end: ei, ring: Ring{start, end}}
	t.byStart[si] = f
	t.byEnd[ei] = f
}

func smooth(r Ring, values []float64, dx, dy int, value float64) {
	for i, p := range r {
		xt, yt := int(p.X), int(p.Y)
		if xt >= dx {
			xt = dx - 1
		}
		if yt >= dy {
			yt = dy - 1
		}
		v1 := valid(values[yt*dx+xt])
		if p.X > 0 && p.X < float64(dx) && float64(xt) == p.X {
			r[i].X = interpolate(p.X, valid(values[yt*dx+xt-1]), v1, value)
		}
		if p.Y > 0 && p.Y < float64(dy) && float64(yt) == p.Y {
			r[i].Y = interpolate(p.Y, valid(values[(yt-1)*dx+xt]), v1, value)
		}
	}
}

func valid(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

func interpolate(x, v0, v1, value float64) float64 {
	a, b := value-v0, v1-v0
	var d float64
	if !math.IsInf(a, 0) || !math.IsInf(b, 0) {
		d = a / b
	} else {
		d = sign(a) / sign(b)
	}
	if math.IsNaN(d) {
		return x
	}
	return x + d - 0.5
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// area is twice the signed area of r, positive for exterior rings.
func area(r Ring) float64 {
	n := len(r)
	a := r[n-1].Y*r[0].X - r[n-1].X*r[0].Y
	for i := 1; i < n; i++ {
		a += r[i-1].Y*r[i].X - r[i-1].X*r[i].Y
	}
	return a
}

// contains reports whether hole lies inside ring: 1 inside, -1 outside,
// 0 if every tested point is on the boundary.
func contains(ring, hole Ring) int {
	for _, p := range hole {
		if c := ringContains(ring, p); c != 0 {
			return c
		}
	}
	return 0
}

func ringContains(ring Ring, p Point) int {
	c := -1
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if segmentContains(pi, pj, p) {
			return 0
		}
		if (pi.Y > p.Y) != (pj.Y > p.Y) && p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			c = -c
		}
	}
	return c
}

func segmentContains(a, b, c Point) bool {
	if (b.X-a.X)*(c.Y-a.Y) != (c.X-a.X)*(b.Y-a.Y) {
		return false
	}
	if a.X == b.X {
		return within(a.Y, c.Y, b.Y)
	}
	return within(a.X, c.X, b.X)
}

func within(p, q, r float64) bool {
	return (p <= q && q <= r) || (r <= q && q <= p)
}
