package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/tiling"
	"github.com/termify/floatspace/internal/workspace"
)

func view(id string, z int, r tiling.Rect) daemon.WindowView {
	return daemon.WindowView{
		WindowState: workspace.WindowState{ID: id, Name: id, ZIndex: z},
		Display:     r,
		Mode:        "normal",
	}
}

func TestRenderCanvasDrawsWindows(t *testing.T) {
	container := workspace.Size{Width: 400, Height: 200}
	a := view("alpha", 1, tiling.Rect{X: 0, Y: 0, Width: 200, Height: 200})
	b := view("beta", 2, tiling.Rect{X: 200, Y: 0, Width: 200, Height: 200})
	b.Focused = true

	lines := renderCanvas([]daemon.WindowView{a, b}, container, 42, 12)
	require.Len(t, lines, 12)

	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.True(t, strings.HasPrefix(lines[11], "╚"))
	assert.Contains(t, lines[1], "alpha")
	assert.Contains(t, lines[1], "beta")
	assert.Contains(t, lines[1], "┏", "focused window uses the heavy frame")
	assert.Contains(t, lines[1], "┌")
}

func TestRenderCanvasPaintsByZ(t *testing.T) {
	container := workspace.Size{Width: 400, Height: 200}
	low := view("low", 1, tiling.Rect{X: 0, Y: 0, Width: 400, Height: 200})
	high := view("high", 5, tiling.Rect{X: 0, Y: 0, Width: 400, Height: 200})

	// Slice order must not matter; the higher z wins.
	lines := renderCanvas([]daemon.WindowView{high, low}, container, 42, 12)
	assert.Contains(t, lines[1], "high")
	assert.NotContains(t, strings.Join(lines, "\n"), "low")
}

func TestRenderCanvasSkipsMinimized(t *testing.T) {
	container := workspace.Size{Width: 400, Height: 200}
	w := view("hidden", 1, tiling.Rect{X: 0, Y: 0, Width: 200, Height: 100})
	w.Mode = "minimized"

	lines := renderCanvas([]daemon.WindowView{w}, container, 42, 12)
	assert.NotContains(t, strings.Join(lines, "\n"), "hidden")
}

func TestRenderCanvasMarksState(t *testing.T) {
	container := workspace.Size{Width: 400, Height: 200}
	big := view("big", 1, tiling.Rect{X: 0, Y: 0, Width: 400, Height: 200})
	big.Mode = "maximized"
	lines := renderCanvas([]daemon.WindowView{big}, container, 42, 12)
	assert.Contains(t, lines[1], "big [max]")

	pinned := view("pinned", 1, tiling.Rect{X: 0, Y: 0, Width: 400, Height: 200})
	pinned.IsCustomized = true
	lines = renderCanvas([]daemon.WindowView{pinned}, container, 42, 12)
	assert.Contains(t, lines[1], "pinned *")
}

func TestRenderCanvasClipsOffscreen(t *testing.T) {
	container := workspace.Size{Width: 400, Height: 200}
	w := view("left", 1, tiling.Rect{X: -300, Y: 0, Width: 400, Height: 200})

	lines := renderCanvas([]daemon.WindowView{w}, container, 42, 12)
	require.Len(t, lines, 12)
	for _, line := range lines {
		assert.Len(t, []rune(line), 42)
	}
}

func TestRenderCanvasUnmeasured(t *testing.T) {
	lines := renderCanvas(nil, workspace.Size{}, 10, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "          ", lines[0])
}

func TestPreviewLines(t *testing.T) {
	lines := PreviewLines(4, workspace.Size{Width: 1000, Height: 600}, 4, 42, 14)
	require.Len(t, lines, 14)

	joined := strings.Join(lines, "\n")
	for _, label := range []string{"1", "2", "3", "4"} {
		assert.Contains(t, joined, label)
	}
}

func TestSummarizeGrid(t *testing.T) {
	assert.Equal(t, "waiting for container size", summarizeGrid(3, workspace.Size{}, 4))
	assert.Equal(t, "4 windows • 2×2 grid • 494×294 px cells",
		summarizeGrid(4, workspace.Size{Width: 1000, Height: 600}, 4))
}
