package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/termify/floatspace/internal/ipc"
	"github.com/termify/floatspace/internal/workspace"
)

const (
	ServerName    = "floatspace"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the daemon client the tools need. *ipc.Client
// implements it.
type Daemon interface {
	GetLayout() (*ipc.LayoutData, error)
	OpenTab(name string) (*workspace.Tab, error)
	Close(id string) error
	Focus(id string) error
	Move(id string, x, y int) error
	MoveBy(id string, dx, dy int) error
	Resize(id, handle string, dx, dy int) error
	Snap(id, direction string) error
	ToggleMaximize(id string) error
	ToggleMinimize(id string) error
	Reset() error
}

// Server is the MCP server exposing the floating layout as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every floating terminal window with its geometry, stacking order, and mode (normal, maximized, minimized). Windows are returned in tab order.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_terminal",
		Description: "Open a new terminal tab. Its window is placed in the next grid cell unless a saved layout pins it. Only available when the daemon owns the tab list.",
	}, s.handleOpenTerminal)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a terminal window's tab. Remaining grid-managed windows re-tile.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the front and give it keyboard focus.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window to a position, or by an offset when relative is set. The window is clamped so at least 100px stays reachable and becomes pinned (customized) so re-tiling leaves it alone.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window by dragging one of its edges or corners. Windows never shrink below 400x300. Resizing pins the window.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window: left or right docks it to half the container, up maximizes, down restores a maximized window or minimizes a normal one.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle maximize for a window. Maximizing is a view state and does not change the saved layout.",
	}, s.handleMaximizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Toggle minimize for a window.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reset_layout",
		Description: "Discard every manual move and resize and re-tile all windows into the grid.",
	}, s.handleResetLayout)
}
