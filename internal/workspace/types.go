package workspace

import (
	"errors"

	"github.com/termify/floatspace/internal/tiling"
)

// TabTypeTerminal marks tabs that own a floating terminal window.
const TabTypeTerminal = "terminal"

// LayoutModeFloating is the only layout mode the persisted blob carries.
const LayoutModeFloating = "floating"

// ErrWindowNotFound is returned when an operation names a window the store does not track.
var ErrWindowNotFound = errors.New("window not found")

// Tab is an entry from the external tab manager. The store only reads it.
type Tab struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	TerminalID string `json:"terminalId,omitempty"`
	Name       string `json:"name"`
}

// IsTerminal reports whether the tab participates in the floating layout.
func (t Tab) IsTerminal() bool {
	return t.Type == TabTypeTerminal && t.TerminalID != ""
}

// TerminalTabs filters tabs down to the ones that get a window, preserving order.
func TerminalTabs(tabs []Tab) []Tab {
	out := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.IsTerminal() {
			out = append(out, tab)
		}
	}
	return out
}

// Point is a window origin relative to the container.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window or container size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Measured reports whether both dimensions are positive.
func (s Size) Measured() bool {
	return s.Width > 0 && s.Height > 0
}

// WindowState is the geometry and stacking state of one floating window.
type WindowState struct {
	ID           string `json:"id"`
	TerminalID   string `json:"terminalId"`
	Name         string `json:"name"`
	Position     Point  `json:"position"`
	Size         Size   `json:"size"`
	ZIndex       int    `json:"zIndex"`
	IsCustomized bool   `json:"isCustomized"`
}

// Rect returns the window geometry as a tiling rectangle.
func (w WindowState) Rect() tiling.Rect {
	return tiling.Rect{X: w.Position.X, Y: w.Position.Y, Width: w.Size.Width, Height: w.Size.Height}
}

// WithRect returns a copy of w with its geometry replaced by r.
func (w WindowState) WithRect(r tiling.Rect) WindowState {
	w.Position = Point{X: r.X, Y: r.Y}
	w.Size = Size{Width: r.Width, Height: r.Height}
	return w
}

// WindowLayout is one persisted window entry.
type WindowLayout struct {
	TerminalID   string `json:"terminalId"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ZIndex       int    `json:"zIndex"`
	IsCustomized bool   `json:"isCustomized"`
}

// Layout is the blob handed to the layout-storage collaborator.
type Layout struct {
	Mode    string         `json:"mode"`
	Windows []WindowLayout `json:"windows"`
}

// LayoutFromWindows serializes window states into a floating layout blob.
func LayoutFromWindows(windows []WindowState) Layout {
	out := Layout{
		Mode:    LayoutModeFloating,
		Windows: make([]WindowLayout, 0, len(windows)),
	}
	for _, w := range windows {
		out.Windows = append(out.Windows, WindowLayout{
			TerminalID:   w.TerminalID,
			X:            w.Position.X,
			Y:            w.Position.Y,
			Width:        w.Size.Width,
			Height:       w.Size.Height,
			ZIndex:       w.ZIndex,
			IsCustomized: w.IsCustomized,
		})
	}
	return out
}

// HydrationIndex maps terminal ids to persisted entries that may seed new windows.
// Only customized entries with a positive size are honored; everything else is
// left to the grid.
func HydrationIndex(layout *Layout) map[string]WindowLayout {
	index := make(map[string]WindowLayout)
	if layout == nil {
		return index
	}
	if layout.Mode != "" && layout.Mode != LayoutModeFloating {
		return index
	}
	for _, entry := range layout.Windows {
		if !entry.IsCustomized || entry.TerminalID == "" {
			continue
		}
		if entry.Width <= 0 || entry.Height <= 0 {
			continue
		}
		index[entry.TerminalID] = entry
	}
	return index
}
