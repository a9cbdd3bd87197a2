// Package config defines the rendering options of a heatcanvas session,
// their defaults and the per-field validation applied when loading them.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/logging"
)

// ErrInvalidOption is wrapped by errors describing a rejected option value.
var ErrInvalidOption = errors.New("config: invalid option")

const (
	DefaultThresholdStep = 20
	DefaultWidth         = 640
	DefaultHeight        = 480
	DefaultFontSize      = 12
)

// Options configures one rendering session.
type Options struct {
	Title  string `mapstructure:"title" yaml:"title"`
	XLabel string `mapstructure:"xLabel" yaml:"xLabel"`
	YLabel string `mapstructure:"yLabel" yaml:"yLabel"`
	ZLabel string `mapstructure:"zLabel" yaml:"zLabel"`
	XUnit  string `mapstructure:"xUnit" yaml:"xUnit"`
	YUnit  string `mapstructure:"yUnit" yaml:"yUnit"`
	ZUnit  string `mapstructure:"zUnit" yaml:"zUnit"`

	XLog     bool `mapstructure:"xLog" yaml:"xLog"`
	YLog     bool `mapstructure:"yLog" yaml:"yLog"`
	XReverse bool `mapstructure:"xReverse" yaml:"xReverse"`
	YReverse bool `mapstructure:"yReverse" yaml:"yReverse"`

	// ZMin and ZMax bound the colour domain. Nil means the data extent.
	ZMin *float64 `mapstructure:"zMin" yaml:"zMin"`
	ZMax *float64 `mapstructure:"zMax" yaml:"zMax"`

	Colors []colorscale.StopSpec `mapstructure:"colors" yaml:"colors"`
	// Palette names a gonum/plot palette and takes precedence over Colors.
	Palette string `mapstructure:"palette" yaml:"palette"`

	Contour        bool `mapstructure:"contour" yaml:"contour"`
	ThresholdStep  int  `mapstructure:"thresholdStep" yaml:"thresholdStep"`
	AutoDownsample int  `mapstructure:"autoDownsample" yaml:"autoDownsample"`

	// Width and Height are the canvas size in pixels.
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`

	Tooltip         bool    `mapstructure:"tooltip" yaml:"tooltip"`
	LegendRight     bool    `mapstructure:"legendRight" yaml:"legendRight"`
	FontSize        float64 `mapstructure:"fontSize" yaml:"fontSize"`
	BackgroundColor string  `mapstructure:"backgroundColor" yaml:"backgroundColor"`

	// CacheSize bounds the colour cache. Zero disables caching.
	CacheSize int `mapstructure:"cacheSize" yaml:"cacheSize"`

	// MetricsAddr, when set, serves prometheus metrics from the viewer.
	MetricsAddr string `mapstructure:"metricsAddr" yaml:"metricsAddr"`

	Log logging.Config `mapstructure:"log" yaml:"log"`
}

// Default returns the documented defaults.
func Default() Options {
	return Options{
		Colors:        DefaultColors(),
		ThresholdStep: DefaultThresholdStep,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Tooltip:       true,
		LegendRight:   true,
		FontSize:      DefaultFontSize,
		CacheSize:     colorscale.DefaultCacheSize,
		Log: logging.Config{
			Level:  logging.DefaultLevel,
			Format: logging.DefaultFormat,
		},
	}
}

// DefaultColors is a two stop blue to red gradient.
func DefaultColors() []colorscale.StopSpec {
	return []colorscale.StopSpec{
		{Color: "#0000ff", Point: 0},
		{Color: "#ff0000", Point: 1},
	}
}

// Stops returns the colour stops selected by Palette or Colors.
func (o Options) Stops() ([]colorscale.Stop, error) {
	if o.Palette != "" {
		return colorscale.PaletteStops(o.Palette, 9)
	}
	return colorscale.ParseStops(o.Colors)
}

// XKind and YKind return the axis scale kinds. Temporal axes are
// detected from the data and take precedence.
func (o Options) XKind(temporal bool) axis.Kind { return kind(o.XLog, temporal) }
func (o Options) YKind(temporal bool) axis.Kind { return kind(o.YLog, temporal) }

func kind(log, temporal bool) axis.Kind {
	switch {
	case temporal:
		return axis.Time
	case log:
		return axis.Log
	}
	return axis.Linear
}

// Correction records an option value replaced by its default.
type Correction struct {
	Field  string
	Value  any
	Reason string
}

func (c Correction) Error() string {
	return fmt.Sprintf("%v is not a valid input for %s: %s", c.Value, c.Field, c.Reason)
}

func (c Correction) Unwrap() error { return ErrInvalidOption }

// validator checks one field of o and resets it from def when invalid.
type validator struct {
	field string
	check func(o *Options, def Options) *Correction
}

var validators = []validator{
	{"zMin", func(o *Options, _ Options) *Correction {
		if o.ZMin != nil && !finite(*o.ZMin) {
			v := *o.ZMin
			o.ZMin = nil
			return &Correction{Value: v, Reason: "must be a finite number"}
		}
		return nil
	}},
	{"zMax", func(o *Options, _ Options) *Correction {
		if o.ZMax != nil && !finite(*o.ZMax) {
			v := *o.ZMax
			o.ZMax = nil
			return &Correction{Value: v, Reason: "must be a finite number"}
		}
		if o.ZMin != nil && o.ZMax != nil && *o.ZMax <= *o.ZMin {
			v := *o.ZMax
			o.ZMin, o.ZMax = nil, nil
			return &Correction{Value: v, Reason: "must be greater than zMin"}
		}
		return nil
	}},
	{"colors", func(o *Options, def Options) *Correction {
		if _, err := colorscale.ParseStops(o.Colors); err != nil {
			v := o.Colors
			o.Colors = def.Colors
			return &Correction{Value: v, Reason: err.Error()}
		}
		return nil
	}},
	{"palette", func(o *Options, def Options) *Correction {
		if o.Palette != "" && !slices.Contains(colorscale.PaletteNames, strings.ToLower(o.Palette)) {
			v := o.Palette
			o.Palette = def.Palette
			return &Correction{Value: v, Reason: "unknown palette"}
		}
		return nil
	}},
	{"thresholdStep", func(o *Options, def Options) *Correction {
		if o.ThresholdStep < 1 {
			v := o.ThresholdStep
			o.ThresholdStep = def.ThresholdStep
			return &Correction{Value: v, Reason: "must be at least 1"}
		}
		return nil
	}},
	{"autoDownsample", func(o *Options, def Options) *Correction {
		if o.AutoDownsample < 0 {
			v := o.AutoDownsample
			o.AutoDownsample = def.AutoDownsample
			return &Correction{Value: v, Reason: "must not be negative"}
		}
		return nil
	}},
	{"width", func(o *Options, def Options) *Correction {
		if o.Width < 2 {
			v := o.Width
			o.Width = def.Width
			return &Correction{Value: v, Reason: "must be at least 2"}
		}
		return nil
	}},
	{"height", func(o *Options, def Options) *Correction {
		if o.Height < 1 {
			v := o.Height
			o.Height = def.Height
			return &Correction{Value: v, Reason: "must be positive"}
		}
		return nil
	}},
	{"fontSize", func(o *Options, def Options) *Correction {
		if !(o.FontSize > 0) || !finite(o.FontSize) {
			v := o.FontSize
			o.FontSize = def.FontSize
			return &Correction{Value: v, Reason: "must be positive"}
		}
		return nil
	}},
	{"cacheSize", func(o *Options, def Options) *Correction {
		if o.CacheSize < 0 {
			v := o.CacheSize
			o.CacheSize = def.CacheSize
			return &Correction{Value: v, Reason: "must not be negative"}
		}
		return nil
	}},
	{"log.format", func(o *Options, def Options) *Correction {
		switch strings.ToLower(o.Log.Format) {
		case "json", "console":
			return nil
		}
		v := o.Log.Format
		o.Log.Format = def.Log.Format
		return &Correction{Value: v, Reason: `must be "json" or "console"`}
	}},
}

// Validate replaces every invalid field with its default and returns
// the corrections made.
func (o *Options) Validate() []Correction {
	def := Default()
	var out []Correction
	for _, v := range validators {
		if c := v.check(o, def); c != nil {
			c.Field = v.field
			out = append(out, *c)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
