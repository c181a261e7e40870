package tui

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/persist"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bridge := persist.NewBridge(persist.NewMemoryStore(), persist.BridgeOptions{Delay: time.Hour, Logger: logger})
	t.Cleanup(bridge.Stop)

	cfg := config.DefaultConfig()
	opts := daemon.OptionsFromConfig(cfg)
	opts.TabsMode = config.TabsLocal
	opts.Logger = logger
	m := newModel(daemon.NewEngine(bridge, opts), cfg.GapSize)

	// 82x33 leaves an 82x30 canvas, an 800x560 px container.
	return send(t, m, tea.WindowSizeMsg{Width: 82, Height: 33})
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func focused(t *testing.T, m model) daemon.WindowView {
	t.Helper()
	for _, w := range m.windows {
		if w.ID == m.status.Focused {
			return w
		}
	}
	t.Fatalf("no focused window among %d", len(m.windows))
	return daemon.WindowView{}
}

func TestModelSetsContainerFromTerminalSize(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 800, m.status.Container.Width)
	assert.Equal(t, 560, m.status.Container.Height)
	assert.Empty(t, m.lastErr)
}

func TestModelOpenAndDrag(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))
	require.Len(t, m.windows, 1)

	w := focused(t, m)
	assert.Equal(t, "Terminal 1", w.Name)
	assert.Equal(t, 4, w.Display.X)
	assert.False(t, w.IsCustomized)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	w = focused(t, m)
	assert.Equal(t, 24, w.Display.X)
	assert.True(t, w.IsCustomized)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 24, focused(t, m).Display.Y)
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))
	before := focused(t, m).Display

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	after := focused(t, m).Display
	assert.Equal(t, before.Width-20, after.Width)
	assert.Equal(t, before.X, after.X)
}

func TestModelSnapAndMaximize(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	w := focused(t, m)
	assert.Equal(t, 0, w.Display.X)
	assert.Equal(t, 400, w.Display.Width)
	assert.Equal(t, 560, w.Display.Height)

	m = send(t, m, runes("m"))
	assert.Equal(t, "maximized", focused(t, m).Mode)
	assert.Contains(t, m.View(), "[max]")

	m = send(t, m, runes("m"))
	assert.Equal(t, "normal", focused(t, m).Mode)
}

func TestModelMinimizeShowsDock(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))

	m = send(t, m, runes("n"))
	assert.Equal(t, "minimized", focused(t, m).Mode)
	assert.Contains(t, m.renderDock(), "Terminal 1")

	m = send(t, m, runes("n"))
	assert.Equal(t, "normal", focused(t, m).Mode)
	assert.NotContains(t, m.renderDock(), "Terminal 1")
}

func TestModelCycleFocusAndClose(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))
	m = send(t, m, runes("a"))
	require.Len(t, m.windows, 2)
	assert.Equal(t, "Terminal 2", focused(t, m).Name)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Terminal 1", focused(t, m).Name)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Terminal 2", focused(t, m).Name)

	m = send(t, m, runes("x"))
	require.Len(t, m.windows, 1)
	assert.Equal(t, "Terminal 1", m.windows[0].Name)
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.True(t, focused(t, m).IsCustomized)

	m = send(t, m, runes("r"))
	assert.False(t, m.windows[0].IsCustomized)
	assert.Equal(t, 4, m.windows[0].Display.X)
}

func TestModelKeysWithoutWindows(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(t, m, runes("m"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Empty(t, m.windows)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlUp})
	assert.Equal(t, "no focused window", m.lastErr)
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("a"))
	m = send(t, m, runes("a"))

	v := m.View()
	assert.Contains(t, v, "floatspace")
	assert.Contains(t, v, "2 windows")
	assert.Contains(t, v, "Terminal 1")
	assert.Contains(t, v, "Terminal 2")
}
