package window

import (
	"github.com/termify/floatspace/internal/tiling"
	"github.com/termify/floatspace/internal/workspace"
)

const (
	DefaultMinWidth        = 400
	DefaultMinHeight       = 300
	DefaultReachableMargin = 100
)

// Host receives the intents a controller emits. Controllers never touch the
// window store directly.
type Host interface {
	MoveWindow(id string, pos workspace.Point)
	ResizeWindow(id string, size workspace.Size)
	FocusWindow(id string)
	CloseWindow(id string)
}

// Limits bounds what drag and resize interactions may produce.
type Limits struct {
	MinWidth        int
	MinHeight       int
	ReachableMargin int
}

// DefaultLimits returns the stock minimum size and reachable margin.
func DefaultLimits() Limits {
	return Limits{
		MinWidth:        DefaultMinWidth,
		MinHeight:       DefaultMinHeight,
		ReachableMargin: DefaultReachableMargin,
	}
}

// ClampPosition keeps at least margin pixels of the window reachable on the
// left and the title bar below the top edge.
func ClampPosition(pos workspace.Point, size workspace.Size, margin int) workspace.Point {
	minX := -(size.Width - margin)
	if pos.X < minX {
		pos.X = minX
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}

type interaction int

const (
	interactionNone interaction = iota
	interactionDrag
	interactionResize
)

// View is a read-only snapshot of a controller.
type View struct {
	ID          string       `json:"id"`
	Rect        tiling.Rect  `json:"rect"`
	Mode        Mode         `json:"-"`
	ModeName    string       `json:"mode"`
	Focused     bool         `json:"focused"`
	PreMaximize *tiling.Rect `json:"preMaximize,omitempty"`
}

// Controller is the interaction state machine of one floating window.
type Controller struct {
	id        string
	host      Host
	limits    Limits
	container workspace.Size

	rect      tiling.Rect
	committed tiling.Rect

	maximized   bool
	minimized   bool
	preMaximize *tiling.Rect
	focused     bool

	active     interaction
	handle     Handle
	interStart tiling.Rect
}

// NewController creates a controller for a window currently at state.
func NewController(state workspace.WindowState, container workspace.Size, limits Limits, host Host) *Controller {
	r := state.Rect()
	return &Controller{
		id:        state.ID,
		host:      host,
		limits:    limits,
		container: container,
		rect:      r,
		committed: r,
	}
}

// ID returns the window id.
func (c *Controller) ID() string {
	return c.id
}

// Rect returns the geometry currently shown.
func (c *Controller) Rect() tiling.Rect {
	return c.rect
}

// Mode returns the display state.
func (c *Controller) Mode() Mode {
	switch {
	case c.minimized:
		return ModeMinimized
	case c.maximized:
		return ModeMaximized
	default:
		return ModeNormal
	}
}

// Focused reports whether the window holds keyboard focus.
func (c *Controller) Focused() bool {
	return c.focused
}

// PreMaximize returns the saved restore geometry, if any.
func (c *Controller) PreMaximize() (tiling.Rect, bool) {
	if c.preMaximize == nil {
		return tiling.Rect{}, false
	}
	return *c.preMaximize, true
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	v := View{
		ID:       c.id,
		Rect:     c.rect,
		Mode:     c.Mode(),
		ModeName: c.Mode().String(),
		Focused:  c.focused,
	}
	if c.preMaximize != nil {
		pre := *c.preMaximize
		v.PreMaximize = &pre
	}
	return v
}

// SetLimits replaces the interaction limits.
func (c *Controller) SetLimits(limits Limits) {
	c.limits = limits
}

// Sync pulls the geometry the store holds. A maximized window keeps covering
// the container and only records the new committed geometry.
func (c *Controller) Sync(state workspace.WindowState) {
	r := state.Rect()
	c.committed = r
	if c.maximized || c.active != interactionNone {
		return
	}
	c.rect = r
}

// SetContainer updates the container bounds used by maximize and snaps.
func (c *Controller) SetContainer(size workspace.Size) {
	c.container = size
	if c.maximized {
		c.rect = c.fullRect()
	}
}

// Activate gives the window keyboard focus and asks the host to raise it.
func (c *Controller) Activate() {
	c.focused = true
	c.host.FocusWindow(c.id)
}

// Blur drops keyboard focus.
func (c *Controller) Blur() {
	c.focused = false
}

// PointerDown routes a press at p in container coordinates. A press inside the
// window activates it; a press anywhere else drops keyboard focus.
func (c *Controller) PointerDown(x, y int) bool {
	if c.rect.Contains(x, y) {
		c.Activate()
		return true
	}
	c.Blur()
	return false
}

// BeginDrag starts a drag. Minimized and maximized windows cannot be dragged.
func (c *Controller) BeginDrag() bool {
	if c.minimized || c.maximized || c.active != interactionNone {
		return false
	}
	c.Activate()
	c.active = interactionDrag
	c.interStart = c.rect
	return true
}

// DragBy moves the window by an offset from where the drag started.
func (c *Controller) DragBy(dx, dy int) {
	if c.active != interactionDrag {
		return
	}
	c.rect.X = c.interStart.X + dx
	c.rect.Y = c.interStart.Y + dy
}

// DragTo moves the window to an absolute position.
func (c *Controller) DragTo(x, y int) {
	if c.active != interactionDrag {
		return
	}
	c.rect.X = x
	c.rect.Y = y
}

// EndDrag clamps the final position and reports it.
func (c *Controller) EndDrag() {
	if c.active != interactionDrag {
		return
	}
	c.active = interactionNone
	c.clamp()
	c.host.MoveWindow(c.id, workspace.Point{X: c.rect.X, Y: c.rect.Y})
	c.committed = c.rect
}

// Drop performs a whole drag ending at (x, y).
func (c *Controller) Drop(x, y int) bool {
	if !c.BeginDrag() {
		return false
	}
	c.DragTo(x, y)
	c.EndDrag()
	return true
}

// BeginResize starts a resize from the given handle.
func (c *Controller) BeginResize(h Handle) bool {
	if c.minimized || c.maximized || c.active != interactionNone {
		return false
	}
	c.Activate()
	c.active = interactionResize
	c.handle = h
	c.interStart = c.rect
	return true
}

// ResizeBy applies a pointer offset from where the resize started. The
// window never shrinks below the minimum size; the edge opposite the handle
// stays put.
func (c *Controller) ResizeBy(dx, dy int) {
	if c.active != interactionResize {
		return
	}
	start := c.interStart
	r := start

	switch {
	case c.handle.movesRight():
		r.Width = max(start.Width+dx, c.limits.MinWidth)
	case c.handle.movesLeft():
		r.Width = max(start.Width-dx, c.limits.MinWidth)
		r.X = start.X + start.Width - r.Width
	}

	switch {
	case c.handle.movesBottom():
		r.Height = max(start.Height+dy, c.limits.MinHeight)
	case c.handle.movesTop():
		r.Height = max(start.Height-dy, c.limits.MinHeight)
		r.Y = start.Y + start.Height - r.Height
	}

	c.rect = r
}

// EndResize clamps the final geometry and reports position and size.
func (c *Controller) EndResize() {
	if c.active != interactionResize {
		return
	}
	c.active = interactionNone
	c.clamp()
	c.host.MoveWindow(c.id, workspace.Point{X: c.rect.X, Y: c.rect.Y})
	c.host.ResizeWindow(c.id, workspace.Size{Width: c.rect.Width, Height: c.rect.Height})
	c.committed = c.rect
}

// ToggleMaximize maximizes a normal window or restores a maximized one.
// A plain restore keeps the saved geometry around.
func (c *Controller) ToggleMaximize() {
	if c.maximized {
		c.restore(false)
		return
	}
	c.maximize()
}

// ToggleMinimize flips the minimized flag.
func (c *Controller) ToggleMinimize() {
	c.cancelInteraction()
	c.minimized = !c.minimized
}

// Snap applies a keyboard snap. Left and right dock to half the container,
// up maximizes, and down restores from a maximize once and minimizes after that.
func (c *Controller) Snap(dir Direction) {
	c.cancelInteraction()

	switch dir {
	case DirLeft, DirRight:
		half := c.container.Width / 2
		r := tiling.Rect{X: 0, Y: 0, Width: half, Height: c.container.Height}
		if dir == DirRight {
			r.X = c.container.Width - half
		}
		c.maximized = false
		c.minimized = false
		c.rect = r
		c.report()
	case DirUp:
		if !c.maximized {
			c.maximize()
		}
	case DirDown:
		if c.preMaximize != nil {
			c.restore(true)
			return
		}
		c.minimized = true
	}
}

// HandleKey applies a snap chord. Keys only act on the keyboard-focused window.
func (c *Controller) HandleKey(k Key) bool {
	if !c.focused {
		return false
	}
	dir, ok := k.SnapDirection()
	if !ok {
		return false
	}
	c.Snap(dir)
	return true
}

// Close asks the host to close the window's tab.
func (c *Controller) Close() {
	c.cancelInteraction()
	c.host.CloseWindow(c.id)
}

func (c *Controller) maximize() {
	pre := c.rect
	c.preMaximize = &pre
	c.maximized = true
	c.minimized = false
	c.rect = c.fullRect()
}

func (c *Controller) restore(clearSnapshot bool) {
	if c.preMaximize != nil {
		c.rect = *c.preMaximize
	}
	c.maximized = false
	if clearSnapshot {
		c.preMaximize = nil
	}
	if c.rect != c.committed {
		c.report()
	}
}

func (c *Controller) report() {
	c.host.MoveWindow(c.id, workspace.Point{X: c.rect.X, Y: c.rect.Y})
	c.host.ResizeWindow(c.id, workspace.Size{Width: c.rect.Width, Height: c.rect.Height})
	c.committed = c.rect
}

func (c *Controller) cancelInteraction() {
	if c.active == interactionNone {
		return
	}
	c.rect = c.interStart
	c.active = interactionNone
}

func (c *Controller) clamp() {
	pos := ClampPosition(
		workspace.Point{X: c.rect.X, Y: c.rect.Y},
		workspace.Size{Width: c.rect.Width, Height: c.rect.Height},
		c.limits.ReachableMargin,
	)
	c.rect.X = pos.X
	c.rect.Y = pos.Y
}

func (c *Controller) fullRect() tiling.Rect {
	return tiling.Rect{X: 0, Y: 0, Width: c.container.Width, Height: c.container.Height}
}
