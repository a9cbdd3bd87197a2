package config

import (
	"fmt"
	"strings"

	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment override, e.g. HEATCANVAS_CONTOUR or
// HEATCANVAS_LOG_LEVEL.
const EnvPrefix = "HEATCANVAS"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// field binds a configuration key to the Options field it decodes into.
// dst must zero slice fields so a failed decode never writes through into
// the defaults.
type field struct {
	key  string
	flag string
	dst  func(o *Options) any
}

var fields = []field{
	{"title", "title", func(o *Options) any { return &o.Title }},
	{"xLabel", "x-label", func(o *Options) any { return &o.XLabel }},
	{"yLabel", "y-label", func(o *Options) any { return &o.YLabel }},
	{"zLabel", "z-label", func(o *Options) any { return &o.ZLabel }},
	{"xUnit", "", func(o *Options) any { return &o.XUnit }},
	{"yUnit", "", func(o *Options) any { return &o.YUnit }},
	{"zUnit", "", func(o *Options) any { return &o.ZUnit }},
	{"xLog", "x-log", func(o *Options) any { return &o.XLog }},
	{"yLog", "y-log", func(o *Options) any { return &o.YLog }},
	{"xReverse", "x-reverse", func(o *Options) any { return &o.XReverse }},
	{"yReverse", "y-reverse", func(o *Options) any { return &o.YReverse }},
	{"zMin", "z-min", func(o *Options) any { return &o.ZMin }},
	{"zMax", "z-max", func(o *Options) any { return &o.ZMax }},
	{"colors", "", func(o *Options) any { o.Colors = nil; return &o.Colors }},
	{"palette", "palette", func(o *Options) any { return &o.Palette }},
	{"contour", "contour", func(o *Options) any { return &o.Contour }},
	{"thresholdStep", "threshold-step", func(o *Options) any { return &o.ThresholdStep }},
	{"autoDownsample", "auto-downsample", func(o *Options) any { return &o.AutoDownsample }},
	{"width", "width", func(o *Options) any { return &o.Width }},
	{"height", "height", func(o *Options) any { return &o.Height }},
	{"tooltip", "", func(o *Options) any { return &o.Tooltip }},
	{"legendRight", "", func(o *Options) any { return &o.LegendRight }},
	{"fontSize", "", func(o *Options) any { return &o.FontSize }},
	{"backgroundColor", "", func(o *Options) any { return &o.BackgroundColor }},
	{"cacheSize", "cache-size", func(o *Options) any { return &o.CacheSize }},
	{"metricsAddr", "metrics-addr", func(o *Options) any { return &o.MetricsAddr }},
	{"log.level", "log-level", func(o *Options) any { return &o.Log.Level }},
	{"log.format", "log-format", func(o *Options) any { return &o.Log.Format }},
	{"log.output_paths", "", func(o *Options) any { o.Log.OutputPaths = nil; return &o.Log.OutputPaths }},
}

// RegisterFlags adds the command line overrides understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("title", "", "chart title")
	fs.String("x-label", "", "x axis label")
	fs.String("y-label", "", "y axis label")
	fs.String("z-label", "", "colour legend label")
	fs.Bool("x-log", false, "logarithmic x axis")
	fs.Bool("y-log", false, "logarithmic y axis")
	fs.Bool("x-reverse", false, "reverse the x axis")
	fs.Bool("y-reverse", false, "reverse the y axis")
	fs.Float64("z-min", 0, "lower bound of the colour domain (default data minimum)")
	fs.Float64("z-max", 0, "upper bound of the colour domain (default data maximum)")
	fs.String("palette", "", "named palette: "+strings.Join(colorscale.PaletteNames, ", "))
	fs.Bool("contour", false, "render filled contours instead of cells")
	fs.Int("threshold-step", def.ThresholdStep, "number of contour bands")
	fs.Int("auto-downsample", def.AutoDownsample, "downsample contour grids to this many cells per axis (0 disables)")
	fs.Int("width", def.Width, "canvas width in pixels")
	fs.Int("height", def.Height, "canvas height in pixels")
	fs.Int("cache-size", def.CacheSize, "colour cache entries (0 disables)")
	fs.String("metrics-addr", "", "serve prometheus metrics on this address")
	fs.String("log-level", def.Log.Level, "debug, info, warn or error")
	fs.String("log-format", def.Log.Format, "console or json")
}

// Load builds Options from defaults, the YAML file at path (skipped when
// empty), HEATCANVAS_* environment variables and changed flags, in
// increasing precedence. Values that fail to decode or validate are
// replaced by their default and logged.
func Load(path string, flags *pflag.FlagSet, log *zap.Logger) (Options, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Options{}, err
		}
	}
	o, corrections := decode(v)
	report(log, corrections)
	return o, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, f := range fields {
		if f.flag == "" {
			continue
		}
		pf := flags.Lookup(f.flag)
		if pf == nil {
			continue
		}
		if err := v.BindPFlag(f.key, pf); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", f.flag, err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (Options, []Correction) {
	o := Default()
	var out []Correction
	for _, f := range fields {
		if !v.IsSet(f.key) {
			continue
		}
		tmp := o
		if err := v.UnmarshalKey(f.key, f.dst(&tmp)); err != nil {
			out = append(out, Correction{Field: f.key, Value: v.Get(f.key), Reason: err.Error()})
			continue
		}
		o = tmp
	}
	return o, append(out, o.Validate()...)
}

func report(log *zap.Logger, corrections []Correction) {
	if log == nil {
		return
	}
	for _, c := range corrections {
		log.Warn("invalid option, using default",
			zap.String("field", c.Field),
			zap.Any("value", c.Value),
			zap.String("reason", c.Reason))
	}
}

// Watch reloads the file at path whenever it changes and passes the new
// Options to onChange. It returns after the initial read; watching runs in
// the background for the life of the process.
func Watch(path string, log *zap.Logger, onChange func(Options)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		o, corrections := decode(v)
		report(log, corrections)
		if log != nil {
			log.Info("configuration reloaded", zap.String("file", e.Name))
		}
		onChange(o)
	})
	v.WatchConfig()
	return nil
}
