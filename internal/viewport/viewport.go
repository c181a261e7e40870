package viewport

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/workspace"
	"github.com/termify/floatspace/internal/x11"
)

// Provider reports the current container size.
type Provider interface {
	Size(ctx context.Context) (workspace.Size, error)
}

// Static is a fixed container size that can be changed at runtime.
type Static struct {
	mu   sync.Mutex
	size workspace.Size
}

// NewStatic returns a provider that always reports size.
func NewStatic(size workspace.Size) *Static {
	return &Static{size: size}
}

// Size returns the configured size.
func (s *Static) Size(context.Context) (workspace.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size, nil
}

// Set replaces the reported size.
func (s *Static) Set(size workspace.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
}

// Terminal measures a terminal and scales its cell grid to pixels.
type Terminal struct {
	fd         int
	cellWidth  int
	cellHeight int
}

// NewTerminal measures the terminal on fd (usually stdout).
func NewTerminal(fd int, cellWidth, cellHeight int) (*Terminal, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("fd %d is not a terminal", fd)
	}
	return &Terminal{fd: fd, cellWidth: cellWidth, cellHeight: cellHeight}, nil
}

// Size returns columns x rows scaled by the cell size.
func (t *Terminal) Size(context.Context) (workspace.Size, error) {
	cols, rows, err := term.GetSize(t.fd)
	if err != nil {
		return workspace.Size{}, fmt.Errorf("measure terminal: %w", err)
	}
	return workspace.Size{Width: cols * t.cellWidth, Height: rows * t.cellHeight}, nil
}

// X11 reports the work area of the active monitor.
type X11 struct {
	conn *x11.Connection
}

// NewX11 connects to the X server.
func NewX11() (*X11, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	return &X11{conn: conn}, nil
}

// Size returns the active work area size.
func (x *X11) Size(context.Context) (workspace.Size, error) {
	area, err := x.conn.ActiveWorkArea()
	if err != nil {
		return workspace.Size{}, err
	}
	return workspace.Size{Width: area.Width, Height: area.Height}, nil
}

// Close disconnects from the X server.
func (x *X11) Close() {
	x.conn.Close()
}

// FromConfig builds the provider selected in cfg.
func FromConfig(cfg config.ViewportConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ViewportStatic, "":
		return NewStatic(workspace.Size{Width: cfg.Width, Height: cfg.Height}), nil
	case config.ViewportTerminal:
		return NewTerminal(int(os.Stdout.Fd()), cfg.CellWidth, cfg.CellHeight)
	case config.ViewportX11:
		return NewX11()
	default:
		return nil, fmt.Errorf("unknown viewport provider %q", cfg.Provider)
	}
}
