package workspace

import (
	"github.com/termify/floatspace/internal/tiling"
)

// ReconcileInput is everything a tab-list reconciliation depends on.
type ReconcileInput struct {
	Tabs      []Tab
	Previous  []WindowState
	Container Size
	Persisted map[string]WindowLayout
	TopZ      int
	Gap       int
}

// ReconcileResult is the window list produced for a tab list.
type ReconcileResult struct {
	Windows      []WindowState
	TopZ         int
	CountChanged bool
	// Hydrated lists the terminal ids whose persisted entry seeded a new window.
	Hydrated []string
}

// Reconcile maps the terminal tabs onto window states. Per tab, in order:
// a customized window keeps its geometry and only picks up the tab name; an
// existing window is moved to its grid slot when the window count changed and
// left alone otherwise; a new window is seeded from a customized persisted
// entry or placed in its grid slot above everything else.
//
// Grid slots are handed out sequentially to grid-managed windows only, while
// the grid itself is sized for the total window count.
func Reconcile(in ReconcileInput) ReconcileResult {
	tabs := uniqueTabs(TerminalTabs(in.Tabs))

	previous := make(map[string]WindowState, len(in.Previous))
	for _, w := range in.Previous {
		previous[w.ID] = w
	}

	countChanged := len(tabs) != len(in.Previous)
	grid := tiling.ComputeGridWithGap(len(tabs), in.Container.Width, in.Container.Height, in.Gap)

	result := ReconcileResult{
		Windows:      make([]WindowState, 0, len(tabs)),
		TopZ:         in.TopZ,
		CountChanged: countChanged,
	}

	slot := 0
	for i, tab := range tabs {
		existing, ok := previous[tab.ID]
		switch {
		case ok && existing.IsCustomized:
			existing.Name = tab.Name
			result.Windows = append(result.Windows, existing)

		case ok && countChanged:
			existing = existing.WithRect(grid.Cell(slot, in.Gap))
			existing.Name = tab.Name
			existing.TerminalID = tab.TerminalID
			existing.IsCustomized = false
			slot++
			result.Windows = append(result.Windows, existing)

		case ok:
			existing.Name = tab.Name
			slot++
			result.Windows = append(result.Windows, existing)

		default:
			w := WindowState{
				ID:         tab.ID,
				TerminalID: tab.TerminalID,
				Name:       tab.Name,
			}
			if entry, found := in.Persisted[tab.TerminalID]; found {
				w.Position = Point{X: entry.X, Y: entry.Y}
				w.Size = Size{Width: entry.Width, Height: entry.Height}
				w.ZIndex = entry.ZIndex
				w.IsCustomized = true
				result.Hydrated = append(result.Hydrated, tab.TerminalID)
			} else {
				w = w.WithRect(grid.Cell(slot, in.Gap))
				w.ZIndex = in.TopZ + i + 1
				slot++
			}
			if w.ZIndex > result.TopZ {
				result.TopZ = w.ZIndex
			}
			result.Windows = append(result.Windows, w)
		}
	}

	return result
}

// uniqueTabs drops repeated tab ids, keeping the first occurrence.
func uniqueTabs(tabs []Tab) []Tab {
	seen := make(map[string]bool, len(tabs))
	out := tabs[:0:0]
	for _, tab := range tabs {
		if seen[tab.ID] {
			continue
		}
		seen[tab.ID] = true
		out = append(out, tab)
	}
	return out
}

// RecomputeForResize re-grids every non-customized window for a new container
// size. The grid is sized for all windows, but slots are assigned in order to
// grid-managed windows only, so pinned windows leave holes at the end of the grid.
func RecomputeForResize(windows []WindowState, container Size, gap int) []WindowState {
	out := make([]WindowState, len(windows))
	copy(out, windows)
	if !container.Measured() {
		return out
	}

	grid := tiling.ComputeGridWithGap(len(out), container.Width, container.Height, gap)
	slot := 0
	for i := range out {
		if out[i].IsCustomized {
			continue
		}
		out[i] = out[i].WithRect(grid.Cell(slot, gap))
		slot++
	}
	return out
}
