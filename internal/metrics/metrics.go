// Package metrics exposes rendering activity as prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heatcanvas"

var renderBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// Metrics records colour cache, render and contour activity. A nil
// *Metrics discards everything.
type Metrics struct {
	cacheTotal      *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	contourFailures *prometheus.CounterVec
	sessions        prometheus.Gauge
}

// New creates the collectors and registers them with registerer, or the
// default registerer when nil.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	m.cacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "color_cache_total",
		Help:      "Colour scale cache lookups by result.",
	}, []string{"result"})

	m.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering one view.",
		Buckets:   renderBuckets,
	}, []string{"mode"})

	m.contourFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contour_failures_total",
		Help:      "Grids skipped because contouring failed.",
	}, []string{"stage"})

	m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Rendering sessions currently open.",
	})

	for _, c := range []prometheus.Collector{m.cacheTotal, m.renderDuration, m.contourFailures, m.sessions} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheTotal.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheTotal.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) CacheEvict() {
	if m != nil {
		m.cacheTotal.WithLabelValues("evict").Inc()
	}
}

// ContourFailure counts a grid skipped at stage ("prepare" or "fill").
func (m *Metrics) ContourFailure(stage string) {
	if m != nil {
		m.contourFailures.WithLabelValues(stage).Inc()
	}
}

// ObserveRender records the duration of one render in mode ("raster"
// or "contour").
func (m *Metrics) ObserveRender(mode string, d time.Duration) {
	if m != nil {
		m.renderDuration.WithLabelValues(mode).Observe(d.Seconds())
	}
}

// SessionOpened and SessionClosed track open sessions.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

// Handler serves the metrics of gatherer in the prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
