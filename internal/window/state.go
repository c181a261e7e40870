package window

import (
	"fmt"
	"strings"
)

// Mode is the display state of a floating window.
type Mode int

const (
	// ModeNormal is a regular floating window
	ModeNormal Mode = iota
	// ModeMaximized covers the whole container
	ModeMaximized
	// ModeMinimized is collapsed to a pill
	ModeMinimized
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMaximized:
		return "maximized"
	case ModeMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// Direction represents an arrow key direction
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the string representation of the direction
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection accepts up/down/left/right in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (expected up, down, left or right)", s)
	}
}

// Handle is the edge or corner grabbed during a resize.
type Handle int

const (
	HandleRight Handle = iota
	HandleBottom
	HandleLeft
	HandleTop
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

var handleNames = map[string]Handle{
	"right":        HandleRight,
	"bottom":       HandleBottom,
	"left":         HandleLeft,
	"top":          HandleTop,
	"top-left":     HandleTopLeft,
	"top-right":    HandleTopRight,
	"bottom-left":  HandleBottomLeft,
	"bottom-right": HandleBottomRight,
}

// ParseHandle parses names like "bottom-right".
func ParseHandle(s string) (Handle, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if key == "" {
		return HandleBottomRight, nil
	}
	h, ok := handleNames[key]
	if !ok {
		return 0, fmt.Errorf("invalid resize handle %q", s)
	}
	return h, nil
}

func (h Handle) movesLeft() bool {
	return h == HandleLeft || h == HandleTopLeft || h == HandleBottomLeft
}

func (h Handle) movesRight() bool {
	return h == HandleRight || h == HandleTopRight || h == HandleBottomRight
}

func (h Handle) movesTop() bool {
	return h == HandleTop || h == HandleTopLeft || h == HandleTopRight
}

func (h Handle) movesBottom() bool {
	return h == HandleBottom || h == HandleBottomLeft || h == HandleBottomRight
}
