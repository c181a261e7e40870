package tiling

import (
	"math"
)

// DefaultGap is the spacing in pixels between grid cells and around the container edge.
const DefaultGap = 4

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Grid is the result of a grid computation for a container.
type Grid struct {
	Cols       int
	Rows       int
	CellWidth  int
	CellHeight int
}

// Cells returns the number of slots the grid offers.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// CalculateGrid determines the grid dimensions for the given number of windows.
// Small counts use fixed shapes; larger counts follow the container aspect ratio.
func CalculateGrid(numWindows int, aspect float64) (cols, rows int) {
	switch {
	case numWindows <= 1:
		return 1, 1
	case numWindows == 2:
		return 2, 1
	case numWindows <= 4:
		return 2, 2
	case numWindows <= 6:
		return 3, 2
	case numWindows <= 9:
		return 3, 3
	}

	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}

	cols = int(math.Ceil(math.Sqrt(float64(numWindows) * aspect)))
	if cols < 1 {
		cols = 1
	}
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	for cols*rows < numWindows {
		if cols <= rows {
			cols++
		} else {
			rows++
		}
	}

	return cols, rows
}

// ComputeGrid computes the grid for count windows inside a width x height container
// using DefaultGap.
func ComputeGrid(count, width, height int) Grid {
	return ComputeGridWithGap(count, width, height, DefaultGap)
}

// ComputeGridWithGap computes the grid with an explicit gap size.
func ComputeGridWithGap(count, width, height, gap int) Grid {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	cols, rows := CalculateGrid(count, aspect)

	// Gaps: one before each column and one after the last
	cellWidth := (width - gap*(cols+1)) / cols
	cellHeight := (height - gap*(rows+1)) / rows
	if cellWidth < 0 {
		cellWidth = 0
	}
	if cellHeight < 0 {
		cellHeight = 0
	}

	return Grid{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
	}
}

// CellRect returns the rectangle of grid slot index using DefaultGap.
func CellRect(index, cols, cellWidth, cellHeight int) Rect {
	return CellRectWithGap(index, cols, cellWidth, cellHeight, DefaultGap)
}

// CellRectWithGap returns the rectangle of grid slot index. Slots are filled
// row by row, left to right.
func CellRectWithGap(index, cols, cellWidth, cellHeight, gap int) Rect {
	if cols < 1 {
		cols = 1
	}
	if index < 0 {
		index = 0
	}
	row := index / cols
	col := index % cols

	return Rect{
		X:      gap + col*(cellWidth+gap),
		Y:      gap + row*(cellHeight+gap),
		Width:  cellWidth,
		Height: cellHeight,
	}
}

// Cell returns the rectangle for slot index of this grid.
func (g Grid) Cell(index, gap int) Rect {
	return CellRectWithGap(index, g.Cols, g.CellWidth, g.CellHeight, gap)
}

// CalculatePositions computes every slot rectangle for numWindows windows in the
// container, offset by the container origin.
func CalculatePositions(numWindows int, container Rect, gapSize int) []Rect {
	if numWindows == 0 {
		return nil
	}

	grid := ComputeGridWithGap(numWindows, container.Width, container.Height, gapSize)
	positions := make([]Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		r := grid.Cell(i, gapSize)
		r.X += container.X
		r.Y += container.Y
		positions[i] = r
	}

	return positions
}
