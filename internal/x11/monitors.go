package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the root-window point lies on the monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTCs report no size or outputs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	return monitors, nil
}

// ActiveWorkArea returns the usable area of the monitor under the pointer,
// with panels and docks excluded through the EWMH work area.
func (c *Connection) ActiveWorkArea() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	px, py, havePointer := c.pointer()
	active := pickMonitor(monitors, px, py, havePointer)

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return active, nil
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktop = int(current)
	}
	wa := workArea[desktop]

	return clipToWorkArea(active, Monitor{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	}), nil
}

func (c *Connection) pointer() (int, int, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

func pickMonitor(monitors []Monitor, x, y int, havePointer bool) Monitor {
	if havePointer {
		for _, mon := range monitors {
			if mon.Contains(x, y) {
				return mon
			}
		}
	}
	return monitors[0]
}

// clipToWorkArea intersects a monitor with the desktop work area. Monitors the
// work area does not overlap are returned unchanged.
func clipToWorkArea(mon, wa Monitor) Monitor {
	x1 := max(mon.X, wa.X)
	y1 := max(mon.Y, wa.Y)
	x2 := min(mon.X+mon.Width, wa.X+wa.Width)
	y2 := min(mon.Y+mon.Height, wa.Y+wa.Height)
	if x2 <= x1 || y2 <= y1 {
		return mon
	}
	mon.X = x1
	mon.Y = y1
	mon.Width = x2 - x1
	mon.Height = y2 - y1
	return mon
}
