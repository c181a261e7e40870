package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/workspace"
)

// Options configures the HTTP front end.
type Options struct {
	Addr string
	// AllowedOrigins restricts WebSocket upgrades. Empty allows any origin.
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// LayoutResponse is the body of GET /api/layout.
type LayoutResponse struct {
	Container workspace.Size      `json:"container"`
	Windows   []daemon.WindowView `json:"windows"`
}

// Server exposes the engine over REST and a WebSocket event stream.
type Server struct {
	engine      Engine
	opts        Options
	logger      *slog.Logger
	router      *httprouter.Router
	hub         *Hub
	upgrader    websocket.Upgrader
	server      *http.Server
	unsubscribe func()
}

// NewServer creates a server and starts forwarding engine events to
// WebSocket clients. Stop releases both.
func NewServer(engine Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: engine,
		opts:   opts,
		logger: logger,
		router: httprouter.New(),
		hub:    NewHub(logger, opts.Metrics),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.setupRoutes()

	go s.hub.Run()
	s.unsubscribe = engine.Subscribe(s.broadcastEvent)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down and disconnects WebSocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.unsubscribe()
	s.hub.Stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/api/status", s.handleStatus)
	s.router.GET("/api/layout", s.handleLayout)
	s.router.POST("/api/layout/reset", s.handleCommand(MessageReset))

	s.router.PUT("/api/tabs", s.handleCommand(MessageTabs))
	s.router.POST("/api/tabs", s.handleOpenTab)
	s.router.PUT("/api/container", s.handleCommand(MessageContainer))
	s.router.POST("/api/keys", s.handleCommand(MessageKey))
	s.router.POST("/api/pointer", s.handleCommand(MessagePointer))

	s.router.POST("/api/windows/:id/:action", s.handleWindowAction)

	if s.opts.Metrics != nil {
		s.router.Handler(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	s.router.GET("/ws", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, LayoutResponse{
		Container: s.engine.Status().Container,
		Windows:   s.engine.Windows(),
	})
}

func (s *Server) handleOpenTab(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	msg, err := decodeMessage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	msg.Type = MessageOpen
	tab, err := dispatch(s.engine, msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tab)
}

// handleCommand decodes the body as a Message of the given type.
func (s *Server) handleCommand(msgType string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		msg, err := decodeMessage(r)
		if err != nil {
			writeError(w, err)
			return
		}
		msg.Type = msgType
		s.respond(w, msg)
	}
}

var windowActions = map[string]string{
	"focus":    MessageFocus,
	"move":     MessageMove,
	"resize":   MessageResize,
	"snap":     MessageSnap,
	"maximize": MessageMaximize,
	"minimize": MessageMinimize,
	"close":    MessageClose,
}

func (s *Server) handleWindowAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	msgType, ok := windowActions[ps.ByName("action")]
	if !ok {
		writeJSON(w, http.StatusNotFound, Reply{Type: MessageError, Error: "unknown action " + ps.ByName("action")})
		return
	}
	msg, err := decodeMessage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	msg.Type = msgType
	msg.ID = ps.ByName("id")
	s.respond(w, msg)
}

func (s *Server) respond(w http.ResponseWriter, msg Message) {
	data, err := dispatch(s.engine, msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Reply{Type: MessageAck, For: msg.Type, Data: data})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, s.engine, s.logger)
	s.hub.Register(client)

	// New clients start from the current layout.
	snapshot, err := json.Marshal(daemon.Event{
		Type:      daemon.EventLayout,
		Windows:   s.engine.Windows(),
		Container: s.engine.Status().Container,
	})
	if err == nil {
		client.enqueue(snapshot)
	}

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) broadcastEvent(ev daemon.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal event", "type", ev.Type, "error", err)
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.opts.AllowedOrigins, origin)
}

func decodeMessage(r *http.Request) (Message, error) {
	var msg Message
	if r.Body == nil {
		return msg, nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxMessageSize))
	if err := dec.Decode(&msg); err != nil && !errors.Is(err, io.EOF) {
		return msg, fmt.Errorf("%w: invalid body: %v", errBadRequest, err)
	}
	return msg, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, workspace.ErrWindowNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, Reply{Type: MessageError, Error: err.Error()})
}
