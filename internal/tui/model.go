package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/window"
	"github.com/termify/floatspace/internal/workspace"
)

// Each canvas cell stands for this many container pixels. Terminal cells
// are about twice as tall as they are wide.
const (
	pxPerCol = 10
	pxPerRow = 20
)

// Engine is the layout engine the simulator drives.
type Engine interface {
	Windows() []daemon.WindowView
	Status() daemon.Status
	SetContainer(size workspace.Size) error
	OpenTab(tab workspace.Tab) (workspace.Tab, error)
	Focus(id string) error
	DragBy(id string, dx, dy int) error
	Resize(id string, handle window.Handle, dx, dy int) error
	HandleKey(chord string) (bool, error)
	ToggleMaximize(id string) error
	ToggleMinimize(id string) error
	Close(id string) error
	ResetLayout() error
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

// model is the bubbletea model for the workspace simulator.
type model struct {
	engine Engine
	keys   keyMap
	help   help.Model
	gap    int

	windows []daemon.WindowView
	status  daemon.Status
	lastErr string

	width  int
	height int
}

func newModel(engine Engine, gap int) model {
	m := model{
		engine: engine,
		keys:   defaultKeyMap(),
		help:   help.New(),
		gap:    gap,
	}
	m.refresh()
	return m
}

func (m *model) refresh() {
	m.windows = m.engine.Windows()
	m.status = m.engine.Status()
}

// apply runs an engine call and keeps its error for the status line.
func (m *model) apply(err error) {
	if err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
	m.refresh()
}

func (m model) focusedID() string {
	return m.status.Focused
}

// step is how far one arrow press drags or resizes, in container pixels.
func (m model) step() (int, int) {
	return 2 * pxPerCol, pxPerRow
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := m.canvasSize()
		m.apply(m.engine.SetContainer(workspace.Size{Width: max(w-2, 0) * pxPerCol, Height: max(h-2, 0) * pxPerRow}))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.focusedID()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Snap):
		handled, err := m.engine.HandleKey(msg.String())
		if err == nil && !handled {
			err = errors.New("no focused window")
		}
		m.apply(err)

	case key.Matches(msg, m.keys.Resize):
		if id == "" {
			break
		}
		sx, sy := m.step()
		dx, dy := arrowDelta(strings.TrimPrefix(msg.String(), "shift+"), sx, sy)
		m.apply(m.engine.Resize(id, window.HandleBottomRight, dx, dy))

	case key.Matches(msg, m.keys.Move):
		if id == "" {
			break
		}
		sx, sy := m.step()
		dx, dy := arrowDelta(msg.String(), sx, sy)
		m.apply(m.engine.DragBy(id, dx, dy))

	case key.Matches(msg, m.keys.Next):
		m.cycleFocus(1)

	case key.Matches(msg, m.keys.Prev):
		m.cycleFocus(-1)

	case key.Matches(msg, m.keys.Maximize):
		if id != "" {
			m.apply(m.engine.ToggleMaximize(id))
		}

	case key.Matches(msg, m.keys.Minimize):
		if id != "" {
			m.apply(m.engine.ToggleMinimize(id))
		}

	case key.Matches(msg, m.keys.Open):
		tab, err := m.engine.OpenTab(workspace.Tab{Name: fmt.Sprintf("Terminal %d", len(m.windows)+1)})
		if err == nil {
			err = m.engine.Focus(tab.ID)
		}
		m.apply(err)

	case key.Matches(msg, m.keys.Close):
		if id != "" {
			m.apply(m.engine.Close(id))
		}

	case key.Matches(msg, m.keys.Reset):
		m.apply(m.engine.ResetLayout())
	}

	return m, nil
}

// cycleFocus moves focus through windows in tab order. Minimized windows
// are included so they can be restored from the keyboard.
func (m *model) cycleFocus(delta int) {
	if len(m.windows) == 0 {
		return
	}
	next := 0
	for i, w := range m.windows {
		if w.ID == m.focusedID() {
			next = (i + delta + len(m.windows)) % len(m.windows)
			break
		}
	}
	m.apply(m.engine.Focus(m.windows[next].ID))
}

func arrowDelta(arrow string, sx, sy int) (int, int) {
	switch arrow {
	case "up":
		return 0, -sy
	case "down":
		return 0, sy
	case "left":
		return -sx, 0
	case "right":
		return sx, 0
	}
	return 0, 0
}

// canvasSize is the area left for the canvas after the header, dock and help lines.
func (m model) canvasSize() (int, int) {
	return max(m.width, 0), max(m.height-3, 0)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := headerStyle.Render("floatspace") + " " +
		infoStyle.Render(summarizeGrid(len(m.windows), m.status.Container, m.gap))
	if m.lastErr != "" {
		header += " " + errStyle.Render(m.lastErr)
	}

	w, h := m.canvasSize()
	canvas := strings.Join(renderCanvas(m.windows, m.status.Container, w, h), "\n")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		canvas,
		m.renderDock(),
		m.help.View(m.keys),
	)
}

// renderDock lists minimized windows, the way a taskbar would.
func (m model) renderDock() string {
	var pills []string
	for _, w := range m.windows {
		if w.Mode != window.ModeMinimized.String() {
			continue
		}
		label := w.Name
		if w.Focused {
			label = "[" + label + "]"
		}
		pills = append(pills, dockStyle.Render("▁ "+label))
	}
	if len(pills) == 0 {
		return infoStyle.Render(fmt.Sprintf("%d customized • top z %d", m.status.Customized, m.status.TopZ))
	}
	return strings.Join(pills, "  ")
}
