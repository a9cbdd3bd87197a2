package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
	"github.com/dblueman/heatcanvas/internal/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heatcanvas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	o, err := Load("", nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Default(), o)
	assert.True(t, o.Tooltip)
	assert.Equal(t, 20, o.ThresholdStep)
	assert.Nil(t, o.ZMin)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
title: Sweep
contour: true
thresholdStep: 8
yReverse: true
zMin: -1
zMax: 5
colors:
  - color: "#000000"
    point: 0
  - color: "#ffffff"
    point: 1
log:
  level: debug
`)
	o, err := Load(path, nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Sweep", o.Title)
	assert.True(t, o.Contour)
	assert.True(t, o.YReverse)
	assert.Equal(t, 8, o.ThresholdStep)
	require.NotNil(t, o.ZMin)
	require.NotNil(t, o.ZMax)
	assert.Equal(t, -1.0, *o.ZMin)
	assert.Equal(t, 5.0, *o.ZMax)
	assert.Equal(t, []colorscale.StopSpec{{Color: "#000000", Point: 0}, {Color: "#ffffff", Point: 1}}, o.Colors)
	assert.Equal(t, "debug", o.Log.Level)
	assert.Equal(t, DefaultWidth, o.Width)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	path := writeConfig(t, `
thresholdStep: 0
width: wide
zMin: 5
zMax: 1
colors:
  - color: nothex
    point: 0
`)
	core, logs := observer.New(zapcore.WarnLevel)
	o, err := Load(path, nil, zap.New(core))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.ThresholdStep, o.ThresholdStep)
	assert.Equal(t, def.Width, o.Width)
	assert.Equal(t, def.Colors, o.Colors)
	assert.Nil(t, o.ZMin)
	assert.Nil(t, o.ZMax)

	fields := map[string]bool{}
	for _, e := range logs.All() {
		fields[e.ContextMap()["field"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"width": true, "zMax": true, "colors": true, "thresholdStep": true}, fields)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HEATCANVAS_THRESHOLDSTEP", "30")
	t.Setenv("HEATCANVAS_LOG_LEVEL", "warn")
	t.Setenv("HEATCANVAS_CONTOUR", "true")

	o, err := Load("", nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 30, o.ThresholdStep)
	assert.Equal(t, "warn", o.Log.Level)
	assert.True(t, o.Contour)
}

func TestLoadFlags(t *testing.T) {
	path := writeConfig(t, "width: 100\nheight: 50\n")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--width=200", "--contour", "--z-max=9"}))

	o, err := Load(path, fs, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 200, o.Width)
	assert.Equal(t, 50, o.Height)
	assert.True(t, o.Contour)
	require.NotNil(t, o.ZMax)
	assert.Equal(t, 9.0, *o.ZMax)
	assert.Nil(t, o.ZMin)
}

func TestValidate(t *testing.T) {
	o := Default()
	o.Palette = "sepia"
	o.AutoDownsample = -3
	o.FontSize = 0
	o.Log.Format = "xml"

	corrections := o.Validate()
	require.Len(t, corrections, 4)
	assert.Equal(t, "", o.Palette)
	assert.Equal(t, 0, o.AutoDownsample)
	assert.Equal(t, float64(DefaultFontSize), o.FontSize)
	assert.Equal(t, logging.DefaultFormat, o.Log.Format)

	for _, c := range corrections {
		assert.True(t, errors.Is(c, ErrInvalidOption))
	}
	assert.Contains(t, corrections[0].Error(), "palette")

	o = Default()
	assert.Empty(t, o.Validate())
}

func TestStops(t *testing.T) {
	o := Default()
	stops, err := o.Stops()
	require.NoError(t, err)
	assert.Equal(t, colorscale.DefaultStops(), stops)

	o.Palette = "heat"
	stops, err = o.Stops()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(stops), 2)
}

func TestKinds(t *testing.T) {
	o := Default()
	assert.Equal(t, axis.Linear, o.XKind(false))
	o.XLog = true
	o.YLog = true
	assert.Equal(t, axis.Log, o.XKind(false))
	assert.Equal(t, axis.Time, o.XKind(true))
	assert.Equal(t, axis.Log, o.YKind(false))
}

func TestWatchMissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), zap.NewNop(), func(Options) {})
	assert.Error(t, err)
}
