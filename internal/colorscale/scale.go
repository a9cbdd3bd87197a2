// Package colorscale maps scalar values onto a piecewise-linear colour
// gradient defined by ordered colour stops.
package colorscale

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
)

// DefaultCacheSize is the number of (value, min, max) lookups a Scale
// remembers when no size is given.
const DefaultCacheSize = 1 << 16

var (
	// ErrNoStops is returned when a gradient has no colour stops.
	ErrNoStops = errors.New("colorscale: no colour stops")

	// ErrStopOrder is returned when stop points are outside [0,1] or
	// not in ascending order.
	ErrStopOrder = errors.New("colorscale: stop points must be ascending within [0,1]")
)

var (
	// Missing is returned for missing or NaN values.
	Missing = color.NRGBA{R: 255, G: 255, B: 255, A: 0}
	// OutOfRange is returned for values outside [min, max].
	OutOfRange = color.NRGBA{}
)

// Stop is one control point of a gradient.
type Stop struct {
	Point float64
	Color color.NRGBA
}

// Recorder receives cache activity. It is implemented by
// internal/metrics.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheEvict()
}

// Stats counts cache activity of a Scale.
type Stats struct {
	Hits, Misses, Evictions uint64
	Entries                 int
}

// Scale converts values to colours. Lookups are memoized in a bounded
// LRU cache owned by the Scale; it must not be shared between
// goroutines.
type Scale struct {
	stops []Stop
	cache *lru
	rec   Recorder
	stats Stats
}

// Option configures a Scale.
type Option func(*Scale)

// WithCacheSize bounds the memo cache. Sizes below one disable caching.
func WithCacheSize(n int) Option {
	return func(s *Scale) {
		if n < 1 {
			s.cache = nil
			return
		}
		s.cache = newLRU(n)
	}
}

// WithRecorder reports cache activity to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scale) { s.rec = r }
}

// New returns a Scale for stops, which must be ordered by Point.
func New(stops []Stop, opts ...Option) (*Scale, error) {
	if len(stops) == 0 {
		return nil, ErrNoStops
	}
	for i, st := range stops {
		if st.Point < 0 || st.Point > 1 || math.IsNaN(st.Point) {
			return nil, fmt.Errorf("%w: stop %d at %g", ErrStopOrder, i, st.Point)
		}
		if i > 0 && st.Point < stops[i-1].Point {
			return nil, fmt.Errorf("%w: stop %d at %g after %g", ErrStopOrder, i, st.Point, stops[i-1].Point)
		}
	}

	s := &Scale{
		stops: append([]Stop(nil), stops...),
		cache: newLRU(DefaultCacheSize),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Stops returns a copy of the gradient's stops.
func (s *Scale) Stops() []Stop {
	return append([]Stop(nil), s.stops...)
}

// Color returns the colour of value for the domain [min, max].
// Missing values are transparent white, out of range values transparent
// black, and everything else opaque.
func (s *Scale) Color(value, min, max float64) color.NRGBA {
	if math.IsNaN(value) {
		return Missing
	}
	if value < min || value > max {
		return OutOfRange
	}
	if s.cache == nil {
		return s.interpolate(value, min, max)
	}

	k := cacheKey{value: value, min: min, max: max}
	if c, ok := s.cache.get(k); ok {
		s.stats.Hits++
		if s.rec != nil {
			s.rec.CacheHit()
		}
		return c
	}
	s.stats.Misses++
	if s.rec != nil {
		s.rec.CacheMiss()
	}

	c := s.interpolate(value, min, max)
	if s.cache.put(k, c) {
		s.stats.Evictions++
		if s.rec != nil {
			s.rec.CacheEvict()
		}
	}
	return c
}

func (s *Scale) interpolate(value, min, max float64) color.NRGBA {
	loc := (value - min) / (max - min)
	if !(loc >= 0 && loc <= 1) {
		return Missing
	}
	if len(s.stops) == 1 {
		c := s.stops[0].Color
		c.A = 255
		return c
	}

	last := len(s.stops) - 2
	i := sort.Search(last+1, func(k int) bool { return s.stops[k+1].Point >= loc })
	if i > last {
		i = last
	}
	lo, hi := s.stops[i], s.stops[i+1]

	factor := 1.0
	if d := hi.Point - lo.Point; d > 0 {
		factor = (loc - lo.Point) / d
	}
	factor = math.Max(0, math.Min(1, factor))

	return color.NRGBA{
		R: lerp(lo.Color.R, hi.Color.R, factor),
		G: lerp(lo.Color.G, hi.Color.G, factor),
		B: lerp(lo.Color.B, hi.Color.B, factor),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*f
	return uint8(math.RoundToEven(math.Max(0, math.Min(255, v))))
}

// Stats returns the cache counters.
func (s *Scale) Stats() Stats {
	st := s.stats
	if s.cache != nil {
		st.Entries = s.cache.len()
	}
	return st
}

// Reset empties the cache and zeroes the counters.
func (s *Scale) Reset() {
	if s.cache != nil {
		s.cache.clear()
	}
	s.stats = Stats{}
}
