package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/colorscale"
)

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols, rows := m.canvasSize()
	o := m.session.Options()

	title := o.Title
	if title == "" {
		title = "heatcanvas"
	}
	header := titleStyle.Render(" " + title + " ")
	if m.tooltip != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, dimStyle.Render("  "+m.tooltip))
	}

	canvas := halfBlocks(m.session.Surface().Image(), cols, rows)

	z := m.session.ZDomain()
	legend := legendBar(m.session.Colors(), z.Min, z.Max, cols)
	status := dimStyle.Render(" " + m.status + " ")
	footer := lipgloss.JoinVertical(lipgloss.Left, legend, status, m.help.View(m.keys))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, canvas, footer)
	return appStyle.Width(m.width).Height(m.height).Render(ui)
}

// halfBlocks draws img scaled to cols×rows terminal cells. Each cell
// shows two vertically stacked pixels; transparent pixels are left to the
// terminal background.
func halfBlocks(img *image.NRGBA, cols, rows int) string {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := img.Rect.Min.X + c*w/cols
			top := img.NRGBAAt(x, img.Rect.Min.Y+(2*r)*h/(2*rows))
			bottom := img.NRGBAAt(x, img.Rect.Min.Y+(2*r+1)*h/(2*rows))
			b.WriteString(cell(top, bottom))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cell(top, bottom color.NRGBA) string {
	switch {
	case top.A == 0 && bottom.A == 0:
		return " "
	case bottom.A == 0:
		return lipgloss.NewStyle().Foreground(hex(top)).Render("▀")
	case top.A == 0:
		return lipgloss.NewStyle().Foreground(hex(bottom)).Render("▄")
	}
	return lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom)).Render("▀")
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(colorscale.Hex(c))
}

// legendBar draws the colour scale between its end labels.
func legendBar(s *colorscale.Scale, min, max float64, width int) string {
	lo := axis.FormatNumber(min, 3)
	hi := axis.FormatNumber(max, 3)
	n := width - len(lo) - len(hi) - 4
	if n < 1 {
		return lo + " " + hi
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		v := min
		if n > 1 {
			v = min + (max-min)*float64(i)/float64(n-1)
		}
		c := s.Color(v, min, max)
		if c.A == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(hex(c)).Render("█"))
	}
	return " " + lo + " " + b.String() + " " + hi
}

func format(k axis.Kind, v float64) string {
	return axis.FormatValue(k, v)
}
