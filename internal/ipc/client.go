package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/termify/floatspace/internal/runtimepath"
	"github.com/termify/floatspace/internal/workspace"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the runtime socket
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// send marshals payload, sends cmd and decodes the response data into out
// when out is non-nil.
func (c *Client) send(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.send(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.send(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetLayout retrieves every window with its committed and displayed geometry.
func (c *Client) GetLayout() (*LayoutData, error) {
	var layout LayoutData
	if err := c.send(CommandGetLayout, nil, &layout); err != nil {
		return nil, err
	}
	return &layout, nil
}

// SetTabs replaces the daemon's tab list.
func (c *Client) SetTabs(tabs []workspace.Tab) error {
	return c.send(CommandSetTabs, SetTabsPayload{Tabs: tabs}, nil)
}

// OpenTab opens a terminal tab and returns it with defaults filled in.
func (c *Client) OpenTab(name string) (*workspace.Tab, error) {
	var tab workspace.Tab
	if err := c.send(CommandOpenTab, OpenTabPayload{Name: name}, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

// SetContainer reports a container size.
func (c *Client) SetContainer(width, height int) error {
	return c.send(CommandSetContainer, SetContainerPayload{Width: width, Height: height}, nil)
}

func (c *Client) Focus(id string) error {
	return c.send(CommandFocus, WindowPayload{ID: id}, nil)
}

// Move places a window at (x, y).
func (c *Client) Move(id string, x, y int) error {
	return c.send(CommandMove, MovePayload{ID: id, X: x, Y: y}, nil)
}

// MoveBy drags a window by an offset.
func (c *Client) MoveBy(id string, dx, dy int) error {
	return c.send(CommandMove, MovePayload{ID: id, X: dx, Y: dy, Relative: true}, nil)
}

// Resize drags handle by (dx, dy). An empty handle means bottom-right.
func (c *Client) Resize(id, handle string, dx, dy int) error {
	return c.send(CommandResize, ResizePayload{ID: id, Handle: handle, DX: dx, DY: dy}, nil)
}

func (c *Client) Snap(id, direction string) error {
	return c.send(CommandSnap, SnapPayload{ID: id, Direction: direction}, nil)
}

func (c *Client) ToggleMaximize(id string) error {
	return c.send(CommandToggleMaximize, WindowPayload{ID: id}, nil)
}

func (c *Client) ToggleMinimize(id string) error {
	return c.send(CommandToggleMinimize, WindowPayload{ID: id}, nil)
}

// Close asks the daemon to close a window's tab.
func (c *Client) Close(id string) error {
	return c.send(CommandClose, WindowPayload{ID: id}, nil)
}

// Key delivers a chord such as "ctrl+left" to the focused window.
func (c *Client) Key(chord string) (bool, error) {
	var data KeyData
	if err := c.send(CommandKey, KeyPayload{Key: chord}, &data); err != nil {
		return false, err
	}
	return data.Handled, nil
}

// Reset clears all customizations and re-grids.
func (c *Client) Reset() error {
	return c.send(CommandReset, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
