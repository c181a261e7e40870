package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/runtimepath"
	"github.com/termify/floatspace/internal/window"
	"github.com/termify/floatspace/internal/workspace"
)

// Engine is the layout engine the server drives.
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
	ResetLayout() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	logger       *slog.Logger
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath, or on the runtime socket
// when socketPath is empty.
func NewServer(socketPath string, engine Engine, logger *slog.Logger, reloadChan chan struct{}) (*Server, error) {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     engine,
		logger:     logger,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetLayout:
		return s.handleGetLayout()
	case CommandSetTabs:
		return s.handleSetTabs(req.Payload)
	case CommandOpenTab:
		return s.handleOpenTab(req.Payload)
	case CommandSetContainer:
		return s.handleSetContainer(req.Payload)
	case CommandFocus:
		return s.handleWindow(req.Payload, s.engine.Focus)
	case CommandToggleMaximize:
		return s.handleWindow(req.Payload, s.engine.ToggleMaximize)
	case CommandToggleMinimize:
		return s.handleWindow(req.Payload, s.engine.ToggleMinimize)
	case CommandClose:
		return s.handleWindow(req.Payload, s.engine.Close)
	case CommandMove:
		return s.handleMove(req.Payload)
	case CommandResize:
		return s.handleResize(req.Payload)
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandKey:
		return s.handleKey(req.Payload)
	case CommandReset:
		return result(nil, s.engine.ResetLayout())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload asks the daemon to reload its configuration
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")

	if s.reloadChan == nil {
		return NewErrorResponse("reload is not supported by this daemon")
	}

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.engine.Status(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetLayout() *Response {
	data := LayoutData{
		Container: s.engine.Status().Container,
		Windows:   s.engine.Windows(),
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSetTabs(payload json.RawMessage) *Response {
	var req SetTabsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid tabs payload: %v", err))
	}
	return result(nil, s.engine.SetTabs(req.Tabs))
}

func (s *Server) handleOpenTab(payload json.RawMessage) *Response {
	var req OpenTabPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
		}
	}
	tab, err := s.engine.OpenTab(workspace.Tab{
		ID:         req.ID,
		Type:       workspace.TabTypeTerminal,
		TerminalID: req.TerminalID,
		Name:       req.Name,
	})
	return result(tab, err)
}

func (s *Server) handleSetContainer(payload json.RawMessage) *Response {
	var req SetContainerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid container payload: %v", err))
	}
	return result(nil, s.engine.SetContainer(workspace.Size{Width: req.Width, Height: req.Height}))
}

func (s *Server) handleWindow(payload json.RawMessage, op func(id string) error) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	return result(nil, op(req.ID))
}

func (s *Server) handleMove(payload json.RawMessage) *Response {
	var req MovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	if req.Relative {
		return result(nil, s.engine.DragBy(req.ID, req.X, req.Y))
	}
	return result(nil, s.engine.Move(req.ID, workspace.Point{X: req.X, Y: req.Y}))
}

func (s *Server) handleResize(payload json.RawMessage) *Response {
	var req ResizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	handle, err := window.ParseHandle(req.Handle)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return result(nil, s.engine.Resize(req.ID, handle, req.DX, req.DY))
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var req SnapPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	dir, err := window.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return result(nil, s.engine.Snap(req.ID, dir))
}

func (s *Server) handleKey(payload json.RawMessage) *Response {
	var req KeyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid key payload: %v", err))
	}
	handled, err := s.engine.HandleKey(req.Key)
	return result(KeyData{Handled: handled}, err)
}

func result(data any, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, mErr := NewOKResponse(data)
	if mErr != nil {
		return NewErrorResponse(mErr.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
