package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one floating window.
type WindowInfo struct {
	ID           string `json:"id"`
	TerminalID   string `json:"terminal_id"`
	Name         string `json:"name"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ZIndex       int    `json:"z_index"`
	IsCustomized bool   `json:"is_customized"`
	Mode         string `json:"mode"`
	Focused      bool   `json:"focused"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	ContainerWidth  int          `json:"container_width"`
	ContainerHeight int          `json:"container_height"`
	Windows         []WindowInfo `json:"windows"`
}

// OpenTerminalInput is the input for the open_terminal tool.
type OpenTerminalInput struct {
	Name string `json:"name,omitempty" jsonschema:"Tab title for the new terminal (default: Terminal)"`
}

// OpenTerminalOutput is the output for the open_terminal tool.
type OpenTerminalOutput struct {
	ID         string `json:"id"`
	TerminalID string `json:"terminal_id"`
	Name       string `json:"name"`
}

// WindowInput addresses a single window.
type WindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID       string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
	X        int    `json:"x" jsonschema:"Target x in container pixels, or the x offset when relative is true"`
	Y        int    `json:"y" jsonschema:"Target y in container pixels, or the y offset when relative is true"`
	Relative bool   `json:"relative,omitempty" jsonschema:"When true, x and y are offsets from the current position"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
	Handle string `json:"handle,omitempty" jsonschema:"Edge or corner to drag: left, right, top, bottom, top-left, top-right, bottom-left, bottom-right (default: bottom-right)"`
	DX     int    `json:"dx" jsonschema:"Horizontal drag distance in pixels"`
	DY     int    `json:"dy" jsonschema:"Vertical drag distance in pixels"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	ID        string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
	Direction string `json:"direction" jsonschema:"required,One of left, right, up (maximize), down (restore or minimize)"`
}

// WindowOutput reports the state of a window after an operation.
type WindowOutput struct {
	Window *WindowInfo `json:"window,omitempty"`
}

// ResetLayoutInput is the input for the reset_layout tool.
type ResetLayoutInput struct{}

// ResetLayoutOutput is the output for the reset_layout tool.
type ResetLayoutOutput struct {
	Windows int `json:"windows"`
}
