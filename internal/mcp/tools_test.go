package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/ipc"
	"github.com/termify/floatspace/internal/persist"
	"github.com/termify/floatspace/internal/window"
	"github.com/termify/floatspace/internal/workspace"
)

// engineDaemon serves tool calls from an in-process engine.
type engineDaemon struct {
	e *daemon.Engine
}

func (d engineDaemon) GetLayout() (*ipc.LayoutData, error) {
	return &ipc.LayoutData{Container: d.e.Status().Container, Windows: d.e.Windows()}, nil
}

func (d engineDaemon) OpenTab(name string) (*workspace.Tab, error) {
	tab, err := d.e.OpenTab(workspace.Tab{Name: name})
	if err != nil {
		return nil, err
	}
	return &tab, nil
}

func (d engineDaemon) Close(id string) error          { return d.e.Close(id) }
func (d engineDaemon) Focus(id string) error          { return d.e.Focus(id) }
func (d engineDaemon) ToggleMaximize(id string) error { return d.e.ToggleMaximize(id) }
func (d engineDaemon) ToggleMinimize(id string) error { return d.e.ToggleMinimize(id) }
func (d engineDaemon) Reset() error                   { return d.e.ResetLayout() }

func (d engineDaemon) Move(id string, x, y int) error {
	return d.e.Move(id, workspace.Point{X: x, Y: y})
}

func (d engineDaemon) MoveBy(id string, dx, dy int) error {
	return d.e.DragBy(id, dx, dy)
}

func (d engineDaemon) Resize(id, handle string, dx, dy int) error {
	h, err := window.ParseHandle(handle)
	if err != nil {
		return err
	}
	return d.e.Resize(id, h, dx, dy)
}

func (d engineDaemon) Snap(id, direction string) error {
	dir, err := window.ParseDirection(direction)
	if err != nil {
		return err
	}
	return d.e.Snap(id, dir)
}

func newTestServer(t *testing.T, tabs ...string) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bridge := persist.NewBridge(persist.NewMemoryStore(), persist.BridgeOptions{Delay: time.Hour, Logger: logger})
	t.Cleanup(bridge.Stop)

	opts := daemon.OptionsFromConfig(config.DefaultConfig())
	opts.Logger = logger
	e := daemon.NewEngine(bridge, opts)
	if err := e.SetContainer(workspace.Size{Width: 1200, Height: 800}); err != nil {
		t.Fatalf("SetContainer: %v", err)
	}
	list := make([]workspace.Tab, 0, len(tabs))
	for _, id := range tabs {
		list = append(list, workspace.Tab{ID: id, Type: workspace.TabTypeTerminal, TerminalID: "t-" + id, Name: id})
	}
	if err := e.SetTabs(list); err != nil {
		t.Fatalf("SetTabs: %v", err)
	}
	return NewServer(engineDaemon{e: e}, logger)
}

func TestListWindows(t *testing.T) {
	s := newTestServer(t, "a", "b", "c")
	ctx := context.Background()

	_, out, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if out.ContainerWidth != 1200 || out.ContainerHeight != 800 {
		t.Fatalf("container = %dx%d, want 1200x800", out.ContainerWidth, out.ContainerHeight)
	}
	if len(out.Windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(out.Windows))
	}
	if w := out.Windows[2]; w.X != 4 || w.Y != 402 || w.Width != 594 || w.Height != 394 {
		t.Fatalf("third window = %+v, want grid cell (4,402,594,394)", w)
	}
}

func TestMoveAndResizeWindow(t *testing.T) {
	s := newTestServer(t, "a")
	ctx := context.Background()

	_, out, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: "a", X: 50, Y: 60})
	if err != nil {
		t.Fatalf("move_window: %v", err)
	}
	if out.Window == nil || out.Window.X != 50 || out.Window.Y != 60 || !out.Window.IsCustomized {
		t.Fatalf("unexpected window after move: %+v", out.Window)
	}

	_, out, err = s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: "a", X: -10, Y: 5, Relative: true})
	if err != nil {
		t.Fatalf("relative move_window: %v", err)
	}
	if out.Window.X != 40 || out.Window.Y != 65 {
		t.Fatalf("relative move landed at (%d,%d), want (40,65)", out.Window.X, out.Window.Y)
	}

	_, out, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: "a", DX: -5000, DY: -5000})
	if err != nil {
		t.Fatalf("resize_window: %v", err)
	}
	if out.Window.Width != 400 || out.Window.Height != 300 {
		t.Fatalf("size = %dx%d, want minimum 400x300", out.Window.Width, out.Window.Height)
	}
}

func TestSnapAndMaximize(t *testing.T) {
	s := newTestServer(t, "a", "b")
	ctx := context.Background()

	_, out, err := s.handleSnapWindow(ctx, nil, SnapWindowInput{ID: "b", Direction: "right"})
	if err != nil {
		t.Fatalf("snap_window: %v", err)
	}
	if out.Window.X != 600 || out.Window.Width != 600 || out.Window.Height != 800 {
		t.Fatalf("snapped window = %+v, want right half", out.Window)
	}

	_, out, err = s.handleMaximizeWindow(ctx, nil, WindowInput{ID: "a"})
	if err != nil {
		t.Fatalf("maximize_window: %v", err)
	}
	if out.Window.Mode != "maximized" || out.Window.Width != 1200 {
		t.Fatalf("maximized window = %+v", out.Window)
	}

	_, out, err = s.handleMinimizeWindow(ctx, nil, WindowInput{ID: "b"})
	if err != nil {
		t.Fatalf("minimize_window: %v", err)
	}
	if out.Window.Mode != "minimized" {
		t.Fatalf("mode = %q, want minimized", out.Window.Mode)
	}

	if _, _, err := s.handleSnapWindow(ctx, nil, SnapWindowInput{ID: "a"}); err == nil {
		t.Fatal("expected error for missing direction")
	}
}

func TestOpenFocusClose(t *testing.T) {
	s := newTestServer(t, "a")
	ctx := context.Background()

	_, opened, err := s.handleOpenTerminal(ctx, nil, OpenTerminalInput{Name: "  build  "})
	if err != nil {
		t.Fatalf("open_terminal: %v", err)
	}
	if opened.Name != "build" || opened.ID == "" {
		t.Fatalf("unexpected tab: %+v", opened)
	}

	_, out, err := s.handleFocusWindow(ctx, nil, WindowInput{ID: opened.ID})
	if err != nil {
		t.Fatalf("focus_window: %v", err)
	}
	if !out.Window.Focused {
		t.Fatal("expected focused window")
	}

	res, _, err := s.handleCloseWindow(ctx, nil, WindowInput{ID: opened.ID})
	if err != nil {
		t.Fatalf("close_window: %v", err)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if !strings.Contains(text, opened.ID) {
		t.Fatalf("close text %q does not name the window", text)
	}

	_, list, _ := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if len(list.Windows) != 1 {
		t.Fatalf("windows after close = %d, want 1", len(list.Windows))
	}
}

func TestResetLayout(t *testing.T) {
	s := newTestServer(t, "a", "b")
	ctx := context.Background()

	if _, _, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: "a", X: 300, Y: 300}); err != nil {
		t.Fatalf("move_window: %v", err)
	}
	_, out, err := s.handleResetLayout(ctx, nil, ResetLayoutInput{})
	if err != nil {
		t.Fatalf("reset_layout: %v", err)
	}
	if out.Windows != 2 {
		t.Fatalf("windows = %d, want 2", out.Windows)
	}

	_, list, _ := s.handleListWindows(ctx, nil, ListWindowsInput{})
	for _, w := range list.Windows {
		if w.IsCustomized {
			t.Fatalf("window %s still customized after reset", w.ID)
		}
	}
}

func TestToolErrors(t *testing.T) {
	s := newTestServer(t, "a")
	ctx := context.Background()

	if _, _, err := s.handleFocusWindow(ctx, nil, WindowInput{}); err == nil {
		t.Fatal("expected error for empty id")
	}
	_, _, err := s.handleFocusWindow(ctx, nil, WindowInput{ID: "ghost"})
	if !errors.Is(err, workspace.ErrWindowNotFound) {
		t.Fatalf("expected ErrWindowNotFound, got %v", err)
	}
	if _, _, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: "a", Handle: "middle"}); err == nil {
		t.Fatal("expected error for bad handle")
	}
	if _, _, err := s.handleCloseWindow(ctx, nil, WindowInput{ID: " "}); err == nil {
		t.Fatal("expected error for blank id")
	}
}
