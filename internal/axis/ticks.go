package axis

import (
	"math"
	"strconv"
	"time"

	"gonum.org/v1/plot"
)

// TimeLayout is the layout used for temporal tick labels and values.
const TimeLayout = "15:04 2 Jan 06"

// Ticker returns the gonum/plot tick marker matching the scale kind.
func Ticker(k Kind) plot.Ticker {
	switch k {
	case Log:
		return plot.LogTicks{Prec: -1}
	case Time:
		return plot.TimeTicks{Format: TimeLayout}
	default:
		return plot.DefaultTicks{}
	}
}

// Ticks returns the labelled ticks of the scale's current domain, each
// paired with its pixel position.
func Ticks(s Scale) []Tick {
	d0, d1 := s.Domain()
	lo, hi := math.Min(d0, d1), math.Max(d0, d1)
	if !(hi > lo) || (s.Kind() == Log && lo <= 0) {
		return nil
	}
	var out []Tick
	for _, t := range Ticker(s.Kind()).Ticks(lo, hi) {
		if t.Label == "" || t.Value < lo || t.Value > hi {
			continue
		}
		out = append(out, Tick{Value: t.Value, Label: t.Label, Pixel: s.Forward(t.Value)})
	}
	return out
}

// Tick is a labelled position along an axis.
type Tick struct {
	Value float64
	Label string
	Pixel float64
}

// FormatValue renders a coordinate or sample value for display. Numbers
// far from unity use exponent notation, others are rounded to three
// decimals.
func FormatValue(k Kind, v float64) string {
	if k == Time {
		return plot.UTCUnixTime(v).Format(TimeLayout)
	}
	return FormatNumber(v, 3)
}

// FormatNumber formats v with the given number of decimals, switching to
// exponent notation outside [0.01, 9999].
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	a := math.Abs(v)
	if a > 9999 || (a < 0.01 && v != 0) {
		return strconv.FormatFloat(v, 'e', decimals, 64)
	}
	f := math.Pow10(decimals)
	return strconv.FormatFloat(math.Round(v*f)/f, 'f', -1, 64)
}

// TimeValue converts a time to the Unix seconds used by temporal axes.
func TimeValue(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
