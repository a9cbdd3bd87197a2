// Package heatmap ties the rendering pipeline together. A Session owns the
// grids of one chart, the options they are drawn with, the colour cache,
// the view state and the surface the current view is presented on.
package heatmap

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/config"
	"github.com/dblueman/heatcanvas/internal/contour"
	"github.com/dblueman/heatcanvas/internal/grid"
	"github.com/dblueman/heatcanvas/internal/metrics"
	"github.com/dblueman/heatcanvas/internal/raster"
	"github.com/dblueman/heatcanvas/internal/view"
)

// Session renders one set of grids. It is not safe for concurrent use.
type Session struct {
	id   uuid.UUID
	opts config.Options
	log  *zap.Logger

	grids   []*grid.Grid
	extents grid.Extents
	z       grid.Domain

	colors  *colorscale.Scale
	view    *view.Controller
	surface *raster.Surface
	metrics *metrics.Metrics

	// contour mode only
	builder    *contour.Builder
	layers     []*contour.Layers
	thresholds []float64
	step       float64

	closed bool
}

// Option customises a Session.
type Option func(*Session)

// WithMetrics records cache, render and contour activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// NewSession validates grids and prepares everything needed to render
// them with opts. Invalid option values are expected to have been
// corrected by config.Load; they are validated again here.
func NewSession(grids []*grid.Grid, opts config.Options, log *zap.Logger, options ...Option) (*Session, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("heatmap: %w: no datasets", grid.ErrInvalidGrid)
	}
	for i, g := range grids {
		if g == nil || g.Z == nil {
			return nil, fmt.Errorf("heatmap: dataset %d: %w", i, grid.ErrInvalidGrid)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{id: uuid.New(), grids: grids}
	for _, o := range options {
		o(s)
	}
	s.log = log.Named("heatmap").With(zap.String("session", s.id.String()))
	for _, c := range opts.Validate() {
		s.log.Warn("invalid option, using default", zap.String("field", c.Field), zap.Any("value", c.Value), zap.String("reason", c.Reason))
	}
	s.opts = opts

	s.extents = grid.ComputeExtents(grids)
	s.z = s.zDomain()

	stops, err := opts.Stops()
	if err != nil {
		return nil, fmt.Errorf("heatmap: colour stops: %w", err)
	}
	s.colors, err = colorscale.New(stops,
		colorscale.WithCacheSize(opts.CacheSize),
		colorscale.WithRecorder(s.metrics))
	if err != nil {
		return nil, fmt.Errorf("heatmap: colour scale: %w", err)
	}

	x, y := s.scales()
	s.surface = raster.NewSurface(opts.Width, opts.Height)
	s.view = view.NewController(x, y, opts.Width, opts.Height, s.draw)

	if opts.Contour {
		s.prepareContours()
	}

	s.metrics.SessionOpened()
	s.log.Info("session created",
		zap.Int("datasets", len(grids)),
		zap.Bool("contour", opts.Contour),
		zap.Float64("zMin", s.z.Min),
		zap.Float64("zMax", s.z.Max))
	return s, nil
}

// zDomain merges the zMin and zMax overrides with the data extent. A
// single override that leaves the domain empty is dropped.
func (s *Session) zDomain() grid.Domain {
	z := s.extents.Z
	if s.opts.ZMin != nil {
		z.Min = *s.opts.ZMin
	}
	if s.opts.ZMax != nil {
		z.Max = *s.opts.ZMax
	}
	if z.Max > z.Min {
		return z
	}

	var field string
	var value float64
	switch {
	case s.opts.ZMin != nil && s.opts.ZMax == nil:
		field, value = "zMin", *s.opts.ZMin
		s.opts.ZMin = nil
		z.Min = s.extents.Z.Min
	case s.opts.ZMax != nil && s.opts.ZMin == nil:
		field, value = "zMax", *s.opts.ZMax
		s.opts.ZMax = nil
		z.Max = s.extents.Z.Max
	default:
		return z
	}
	s.log.Warn("invalid option, using default",
		zap.String("field", field),
		zap.Float64("value", value),
		zap.String("reason", fmt.Sprintf("leaves no colour domain against the data range [%g, %g]", s.extents.Z.Min, s.extents.Z.Max)))
	return z
}

// scales builds the original axis scales over the combined data domains.
func (s *Session) scales() (x, y axis.Scale) {
	var xTime, yTime bool
	for _, g := range s.grids {
		xTime = xTime || g.XTime
		yTime = yTime || g.YTime
	}
	w, h := float64(s.opts.Width), float64(s.opts.Height)

	xr0, xr1 := 0.0, w
	if s.opts.XReverse {
		xr0, xr1 = w, 0
	}
	yr0, yr1 := h, 0.0
	if s.opts.YReverse {
		yr0, yr1 = 0, h
	}

	xk := s.kind("x", s.opts.XKind(xTime), s.extents.X)
	yk := s.kind("y", s.opts.YKind(yTime), s.extents.Y)
	return axis.New(xk, s.extents.X.Min, s.extents.X.Max, xr0, xr1),
		axis.New(yk, s.extents.Y.Min, s.extents.Y.Max, yr0, yr1)
}

// kind falls back to a linear scale when a log scale cannot represent d.
func (s *Session) kind(name string, k axis.Kind, d grid.Domain) axis.Kind {
	if k == axis.Log && !(d.Min > 0 && d.Max > 0) {
		s.log.Warn("log scale needs a positive domain, using linear",
			zap.String("axis", name), zap.Float64("min", d.Min), zap.Float64("max", d.Max))
		return axis.Linear
	}
	return k
}

func (s *Session) prepareContours() {
	s.builder = contour.NewBuilder(s.log, s.metrics)
	grids := s.grids
	if s.opts.AutoDownsample > 0 {
		grids = make([]*grid.Grid, len(s.grids))
		for i, g := range s.grids {
			grids[i] = grid.Downsample(g, s.opts.AutoDownsample)
		}
	}
	s.thresholds, s.step = contour.Thresholds(s.extents.Z, s.opts.ThresholdStep)
	s.layers = s.builder.PrepareAll(grids, s.thresholds, s.step, s.z.Max)
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Options returns the validated options of the session.
func (s *Session) Options() config.Options { return s.opts }

// Extents returns the data domains of the grids.
func (s *Session) Extents() grid.Extents { return s.extents }

// ZDomain returns the colour domain.
func (s *Session) ZDomain() grid.Domain { return s.z }

// Colors returns the colour scale of the session.
func (s *Session) Colors() *colorscale.Scale { return s.colors }

// Thresholds returns the contour thresholds and step. Both are zero
// outside contour mode.
func (s *Session) Thresholds() ([]float64, float64) { return s.thresholds, s.step }

// View returns the view controller. Committed gestures and resets
// re-render synchronously.
func (s *Session) View() *view.Controller { return s.view }

// Surface returns the surface the current view is presented on.
func (s *Session) Surface() *raster.Surface { return s.surface }

// Render draws the current view and returns the surface image.
func (s *Session) Render() *image.NRGBA {
	s.view.Redraw()
	return s.surface.Image()
}

func (s *Session) draw(x, y axis.Scale) {
	start := time.Now()
	mode := "raster"
	var buf *image.NRGBA
	if s.opts.Contour {
		mode = "contour"
		buf = s.builder.Draw(s.layers, x, y, s.z, s.colors, s.opts.Width, s.opts.Height)
	} else {
		buf = raster.Rasterize(raster.Request{
			Grids:   s.grids,
			X:       x,
			Y:       y,
			XDomain: s.extents.X,
			YDomain: s.extents.Y,
			Width:   s.opts.Width,
			Height:  s.opts.Height,
			Z:       s.z,
			Colors:  s.colors,
		})
	}
	s.surface.Present(buf)

	elapsed := time.Since(start)
	s.metrics.ObserveRender(mode, elapsed)
	s.log.Debug("rendered",
		zap.String("mode", mode),
		zap.Stringer("x", scaleDomain{x}),
		zap.Stringer("y", scaleDomain{y}),
		zap.Duration("elapsed", elapsed))
}

type scaleDomain struct{ axis.Scale }

func (d scaleDomain) String() string {
	lo, hi := d.Domain()
	return fmt.Sprintf("[%g, %g]", lo, hi)
}

// Close releases the colour cache and marks the session closed. It is
// safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	st := s.colors.Stats()
	s.colors.Reset()
	s.metrics.SessionClosed()
	s.log.Info("session closed",
		zap.Uint64("cacheHits", st.Hits),
		zap.Uint64("cacheMisses", st.Misses),
		zap.Uint64("cacheEvictions", st.Evictions))
}
