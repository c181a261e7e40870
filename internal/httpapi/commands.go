package httpapi

import (
	"errors"
	"fmt"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/window"
	"github.com/termify/floatspace/internal/workspace"
)

// Message types accepted over REST bodies and the WebSocket.
const (
	MessageTabs      = "tabs"
	MessageOpen      = "open"
	MessageContainer = "container"
	MessageFocus     = "focus"
	MessageMove      = "move"
	MessageResize    = "resize"
	MessageSnap      = "snap"
	MessageMaximize  = "maximize"
	MessageMinimize  = "minimize"
	MessageClose     = "close"
	MessageKey       = "key"
	MessagePointer   = "pointer"
	MessageReset     = "reset"

	MessageError = "error"
	MessageAck   = "ack"
)

var errBadRequest = errors.New("bad request")

// Engine is the layout engine the API drives.
type Engine interface {
	Status() daemon.Status
	Windows() []daemon.WindowView
	SetTabs(tabs []workspace.Tab) error
	OpenTab(tab workspace.Tab) (workspace.Tab, error)
	SetContainer(size workspace.Size) error
	Focus(id string) error
	Move(id string, pos workspace.Point) error
	DragBy(id string, dx, dy int) error
	Resize(id string, handle window.Handle, dx, dy int) error
	Snap(id string, dir window.Direction) error
	ToggleMaximize(id string) error
	ToggleMinimize(id string) error
	Close(id string) error
	HandleKey(chord string) (bool, error)
	PointerDown(x, y int) (string, error)
	ResetLayout() error
	Subscribe(fn func(daemon.Event)) func()
}

// Message is a command from a front end. Fields are read per Type.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Tabs      []workspace.Tab `json:"tabs,omitempty"`
	Name      string          `json:"name,omitempty"`
	Width     int             `json:"width,omitempty"`
	Height    int             `json:"height,omitempty"`
	X         int             `json:"x,omitempty"`
	Y         int             `json:"y,omitempty"`
	Relative  bool            `json:"relative,omitempty"`
	Handle    string          `json:"handle,omitempty"`
	DX        int             `json:"dx,omitempty"`
	DY        int             `json:"dy,omitempty"`
	Direction string          `json:"direction,omitempty"`
	Key       string          `json:"key,omitempty"`
}

// Reply answers a command. Data carries command-specific results.
type Reply struct {
	Type  string `json:"type"`
	For   string `json:"for,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// dispatch applies msg to the engine and returns command-specific data.
func dispatch(e Engine, msg Message) (any, error) {
	needID := func() error {
		if msg.ID == "" {
			return fmt.Errorf("%w: id is required", errBadRequest)
		}
		return nil
	}

	switch msg.Type {
	case MessageTabs:
		if msg.Tabs == nil {
			msg.Tabs = []workspace.Tab{}
		}
		return nil, e.SetTabs(msg.Tabs)
	case MessageOpen:
		return e.OpenTab(workspace.Tab{ID: msg.ID, Type: workspace.TabTypeTerminal, Name: msg.Name})
	case MessageContainer:
		return nil, e.SetContainer(workspace.Size{Width: msg.Width, Height: msg.Height})
	case MessageFocus:
		if err := needID(); err != nil {
			return nil, err
		}
		return nil, e.Focus(msg.ID)
	case MessageMove:
		if err := needID(); err != nil {
			return nil, err
		}
		if msg.Relative {
			return nil, e.DragBy(msg.ID, msg.X, msg.Y)
		}
		return nil, e.Move(msg.ID, workspace.Point{X: msg.X, Y: msg.Y})
	case MessageResize:
		if err := needID(); err != nil {
			return nil, err
		}
		h, err := window.ParseHandle(msg.Handle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil, e.Resize(msg.ID, h, msg.DX, msg.DY)
	case MessageSnap:
		if err := needID(); err != nil {
			return nil, err
		}
		dir, err := window.ParseDirection(msg.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil, e.Snap(msg.ID, dir)
	case MessageMaximize:
		if err := needID(); err != nil {
			return nil, err
		}
		return nil, e.ToggleMaximize(msg.ID)
	case MessageMinimize:
		if err := needID(); err != nil {
			return nil, err
		}
		return nil, e.ToggleMinimize(msg.ID)
	case MessageClose:
		if err := needID(); err != nil {
			return nil, err
		}
		return nil, e.Close(msg.ID)
	case MessageKey:
		handled, err := e.HandleKey(msg.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return map[string]bool{"handled": handled}, nil
	case MessagePointer:
		hit, err := e.PointerDown(msg.X, msg.Y)
		return map[string]string{"hit": hit}, err
	case MessageReset:
		return nil, e.ResetLayout()
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
}
