package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/workspace"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetLayout      CommandType = "GET_LAYOUT"
	CommandSetTabs        CommandType = "SET_TABS"
	CommandOpenTab        CommandType = "OPEN_TAB"
	CommandSetContainer   CommandType = "SET_CONTAINER"
	CommandFocus          CommandType = "FOCUS"
	CommandMove           CommandType = "MOVE"
	CommandResize         CommandType = "RESIZE"
	CommandSnap           CommandType = "SNAP"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandToggleMinimize CommandType = "TOGGLE_MINIMIZE"
	CommandClose          CommandType = "CLOSE"
	CommandKey            CommandType = "KEY"
	CommandReset          CommandType = "RESET"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	daemon.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// LayoutData represents the data returned by GET_LAYOUT
type LayoutData struct {
	Container workspace.Size      `json:"container"`
	Windows   []daemon.WindowView `json:"windows"`
}

type SetTabsPayload struct {
	Tabs []workspace.Tab `json:"tabs"`
}

type OpenTabPayload struct {
	ID         string `json:"id,omitempty"`
	TerminalID string `json:"terminal_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

type SetContainerPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowPayload addresses a single window for FOCUS, TOGGLE_* and CLOSE.
type WindowPayload struct {
	ID string `json:"id"`
}

type MovePayload struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Relative bool   `json:"relative,omitempty"` // X and Y are offsets
}

type ResizePayload struct {
	ID     string `json:"id"`
	Handle string `json:"handle,omitempty"` // defaults to bottom-right
	DX     int    `json:"dx"`
	DY     int    `json:"dy"`
}

type SnapPayload struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
}

type KeyPayload struct {
	Key string `json:"key"`
}

type KeyData struct {
	Handled bool `json:"handled"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
