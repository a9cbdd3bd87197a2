package colorscale

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// StopSpec is the configuration form of a colour stop.
type StopSpec struct {
	Color string  `mapstructure:"color" json:"color" yaml:"color"`
	Point float64 `mapstructure:"point" json:"point" yaml:"point"`
}

// DefaultStops is the blue to red gradient used when no colours are
// configured.
func DefaultStops() []Stop {
	return []Stop{
		{Point: 0, Color: color.NRGBA{B: 255, A: 255}},
		{Point: 1, Color: color.NRGBA{R: 255, A: 255}},
	}
}

// ParseStops converts hex colour stops ("#0000ff" or "0000ff") into
// gradient stops, sorted by point.
func ParseStops(specs []StopSpec) ([]Stop, error) {
	if len(specs) == 0 {
		return nil, ErrNoStops
	}
	stops := make([]Stop, 0, len(specs))
	for i, sp := range specs {
		hex := strings.TrimSpace(sp.Color)
		if !strings.HasPrefix(hex, "#") {
			hex = "#" + hex
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("colorscale: stop %d: %w", i, err)
		}
		r, g, b := c.RGB255()
		stops = append(stops, Stop{Point: sp.Point, Color: color.NRGBA{R: r, G: g, B: b, A: 255}})
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Point < stops[j].Point })
	return stops, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PaletteNames lists the named gradients accepted by PaletteStops.
var PaletteNames = []string{"heat", "rainbow", "kindlmann", "blackbody", "bluered"}

// PaletteStops returns n evenly spaced stops sampled from a named
// gonum/plot palette.
func PaletteStops(name string, n int) ([]Stop, error) {
	if n < 2 {
		n = 2
	}
	var p palette.Palette
	switch strings.ToLower(name) {
	case "heat":
		p = palette.Heat(n, 1)
	case "rainbow":
		p = palette.Rainbow(n, palette.Blue, palette.Red, 1, 1, 1)
	case "kindlmann":
		p = moreland.Kindlmann().Palette(n)
	case "blackbody":
		p = moreland.BlackBody().Palette(n)
	case "bluered":
		p = moreland.SmoothBlueRed().Palette(n)
	default:
		return nil, fmt.Errorf("colorscale: unknown palette %q", name)
	}

	cols := p.Colors()
	stops := make([]Stop, len(cols))
	for i, c := range cols {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		nc.A = 255
		stops[i] = Stop{Point: float64(i) / float64(len(cols)-1), Color: nc}
	}
	return stops, nil
}
