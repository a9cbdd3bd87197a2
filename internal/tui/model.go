// Package tui is a terminal viewer for a heatmap session. The surface is
// drawn with half-block characters, two pixel rows per terminal row.
// Keys and the mouse wheel zoom and pan through the session's view
// controller, which re-renders synchronously on every commit.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dblueman/heatcanvas/internal/config"
	"github.com/dblueman/heatcanvas/internal/heatmap"
	"github.com/dblueman/heatcanvas/internal/raster"
	"github.com/dblueman/heatcanvas/internal/view"
)

const (
	headerHeight = 1
	footerHeight = 3

	panFraction = 0.1
	zoomStep    = 1.25
)

// ReloadMsg replaces the session with one built from new options.
type ReloadMsg struct {
	Options config.Options
}

// SessionFactory builds a session for options. It is called on reload.
type SessionFactory func(config.Options) (*heatmap.Session, error)

type Model struct {
	session *heatmap.Session
	rebuild SessionFactory
	log     *zap.Logger

	keys    keyMap
	help    help.Model
	channel view.Channel

	width, height int
	status        string
	tooltip       string

	dragging     bool
	dragX, dragY int
}

// New returns a viewer for s. rebuild may be nil, in which case reloads
// are ignored.
func New(s *heatmap.Session, rebuild SessionFactory, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	s.Render()
	return Model{
		session: s,
		rebuild: rebuild,
		log:     log.Named("tui"),
		keys:    defaultKeys(),
		help:    help.New(),
		channel: view.Both,
		status:  "ready",
	}
}

// Session returns the session being viewed.
func (m Model) Session() *heatmap.Session { return m.session }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case ReloadMsg:
		m.reload(msg.Options)

	case tea.KeyMsg:
		return m.key(msg)

	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *Model) reload(o config.Options) {
	if m.rebuild == nil {
		return
	}
	s, err := m.rebuild(o)
	if err != nil {
		m.status = "reload failed: " + err.Error()
		m.log.Error("reload failed", zap.Error(err))
		return
	}
	m.session.Close()
	m.session = s
	m.session.Render()
	m.tooltip = ""
	m.status = "configuration reloaded"
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.session.View()
	w, h := m.surfaceSize()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.pan(0, float64(h)*panFraction)
	case key.Matches(msg, m.keys.Down):
		m.pan(0, -float64(h)*panFraction)
	case key.Matches(msg, m.keys.Left):
		m.pan(float64(w)*panFraction, 0)
	case key.Matches(msg, m.keys.Right):
		m.pan(-float64(w)*panFraction, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		v.Gesture(m.channel).Zoom(zoomStep)
		m.commit(m.channel)
	case key.Matches(msg, m.keys.ZoomOut):
		v.Gesture(m.channel).Zoom(1 / zoomStep)
		m.commit(m.channel)
	case key.Matches(msg, m.keys.Channel):
		m.channel = (m.channel + 1) % 3
		m.status = "zoom " + m.channel.String()
	case key.Matches(msg, m.keys.Reset):
		v.Reset()
		m.status = "reset"
	}
	return m, nil
}

// pan moves the content by (dx, dy) surface pixels.
func (m *Model) pan(dx, dy float64) {
	m.session.View().Gesture(view.Both).Pan(dx, dy)
	m.commit(view.Both)
}

func (m *Model) commit(ch view.Channel) {
	if m.session.View().Commit(ch) {
		m.status = m.domains()
	}
}

func (m Model) domains() string {
	v := m.session.View()
	x0, x1 := v.X.Current.Domain()
	y0, y1 := v.Y.Current.Domain()
	return fmt.Sprintf("x [%s, %s]  y [%s, %s]",
		format(v.X.Current.Kind(), x0), format(v.X.Current.Kind(), x1),
		format(v.Y.Current.Kind(), y0), format(v.Y.Current.Kind(), y1))
}

func (m *Model) mouse(msg tea.MouseMsg) {
	px, py, inside := m.cellToPixel(msg.X, msg.Y)
	v := m.session.View()

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		v.Gesture(m.channel).ZoomAt(zoomStep, px, py)
		m.commit(m.channel)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		v.Gesture(m.channel).ZoomAt(1/zoomStep, px, py)
		m.commit(m.channel)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.dragging = true
		m.dragX, m.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionMotion && m.dragging:
		sx, sy := m.cellScale()
		v.Gesture(view.Both).Pan(float64(msg.X-m.dragX)*sx, float64(msg.Y-m.dragY)*sy)
		m.dragX, m.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.commit(view.Both)
	}

	m.tooltip = ""
	if inside && m.session.Options().Tooltip {
		if sm, ok := m.session.Probe(px, py); ok {
			m.tooltip = strings.ReplaceAll(m.session.Tooltip(sm), "\n", "  ")
		}
	}
}

func (m Model) surfaceSize() (int, int) {
	b := m.session.Surface().Bounds()
	return b.Dx(), b.Dy()
}

func (m Model) canvasSize() (cols, rows int) {
	return max(1, m.width), max(1, m.height-headerHeight-footerHeight)
}

// cellScale returns the number of surface pixels per terminal cell.
func (m Model) cellScale() (sx, sy float64) {
	w, h := m.surfaceSize()
	cols, rows := m.canvasSize()
	return float64(w) / float64(cols), float64(h) / float64(rows)
}

// cellToPixel maps a terminal cell to the view pixel at its centre.
func (m Model) cellToPixel(x, y int) (px, py float64, inside bool) {
	cols, rows := m.canvasSize()
	cy := y - headerHeight
	if x < 0 || x >= cols || cy < 0 || cy >= rows {
		return 0, 0, false
	}
	sx, sy := m.cellScale()
	return (float64(x)+0.5)*sx - raster.Inset, (float64(cy) + 0.5) * sy, true
}

// Program wraps m in a full screen bubbletea program with mouse tracking.
func Program(m Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, opts...)
	return tea.NewProgram(m, opts...)
}
