package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/tiling"
	"github.com/termify/floatspace/internal/workspace"
)

// summarizeGrid describes the grid count windows would get in container.
func summarizeGrid(count int, container workspace.Size, gap int) string {
	if !container.Measured() {
		return "waiting for container size"
	}
	g := tiling.ComputeGridWithGap(count, container.Width, container.Height, gap)
	return fmt.Sprintf("%d windows • %d×%d grid • %d×%d px cells", count, g.Cols, g.Rows, g.CellWidth, g.CellHeight)
}

// PreviewLines renders the grid count windows would get, for layout previews.
func PreviewLines(count int, container workspace.Size, gap, width, height int) []string {
	rects := tiling.CalculatePositions(count, tiling.Rect{Width: container.Width, Height: container.Height}, gap)
	views := make([]daemon.WindowView, len(rects))
	for i, r := range rects {
		views[i] = daemon.WindowView{
			WindowState: workspace.WindowState{ID: fmt.Sprintf("%d", i+1), Name: fmt.Sprintf("%d", i+1), ZIndex: i},
			Display:     r,
			Mode:        "normal",
		}
	}
	return renderCanvas(views, container, width, height)
}

// renderCanvas draws windows onto a character canvas scaled from container.
// Windows are painted bottom to top so overlaps show the raised window.
func renderCanvas(windows []daemon.WindowView, container workspace.Size, width, height int) []string {
	if width < 5 || height < 3 || !container.Measured() {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	ordered := make([]daemon.WindowView, 0, len(windows))
	for _, w := range windows {
		if w.Mode != "minimized" {
			ordered = append(ordered, w)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZIndex < ordered[j].ZIndex })

	for _, w := range ordered {
		drawWindow(canvas, w, container.Width, container.Height, width, height)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

type frame struct {
	h, v           rune
	tl, tr, bl, br rune
}

var (
	plainFrame   = frame{h: '─', v: '│', tl: '┌', tr: '┐', bl: '└', br: '┘'}
	focusedFrame = frame{h: '━', v: '┃', tl: '┏', tr: '┓', bl: '┗', br: '┛'}
)

func drawWindow(canvas [][]rune, w daemon.WindowView, contW, contH, canvasW, canvasH int) {
	rect := w.Display

	// Map container pixels onto the inner canvas (inside the outer border).
	innerW, innerH := canvasW-2, canvasH-2
	x1 := 1 + rect.X*innerW/contW
	y1 := 1 + rect.Y*innerH/contH
	x2 := 1 + (rect.X+rect.Width)*innerW/contW - 1
	y2 := 1 + (rect.Y+rect.Height)*innerH/contH - 1

	// Clamp to canvas bounds; windows may hang off the left edge.
	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	if x2 <= x1 || y2 <= y1 {
		return
	}

	f := plainFrame
	if w.Focused {
		f = focusedFrame
	}

	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			canvas[y][x] = ' '
		}
	}
	for x := x1; x <= x2; x++ {
		canvas[y1][x] = f.h
		canvas[y2][x] = f.h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = f.v
		canvas[y][x2] = f.v
	}
	canvas[y1][x1] = f.tl
	canvas[y1][x2] = f.tr
	canvas[y2][x1] = f.bl
	canvas[y2][x2] = f.br

	label := w.Name
	if label == "" {
		label = w.ID
	}
	if w.Mode == "maximized" {
		label += " [max]"
	} else if w.IsCustomized {
		label += " *"
	}

	// Title sits on the top edge, the way a window title bar would.
	room := x2 - x1 - 3
	if room < 1 {
		return
	}
	runes := []rune(label)
	if len(runes) > room {
		runes = runes[:room]
	}
	for i, r := range runes {
		canvas[y1][x1+2+i] = r
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
