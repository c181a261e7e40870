package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/termify/floatspace/internal/daemon"
)

func toWindowInfo(v daemon.WindowView) WindowInfo {
	return WindowInfo{
		ID:           v.ID,
		TerminalID:   v.TerminalID,
		Name:         v.Name,
		X:            v.Display.X,
		Y:            v.Display.Y,
		Width:        v.Display.Width,
		Height:       v.Display.Height,
		ZIndex:       v.ZIndex,
		IsCustomized: v.IsCustomized,
		Mode:         v.Mode,
		Focused:      v.Focused,
	}
}

func requireID(tool, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: id is required", tool)
	}
	return nil
}

// windowState looks a window up after an operation. A window that is gone
// (closed) yields an empty output.
func (s *Server) windowState(id string) (WindowOutput, error) {
	layout, err := s.daemon.GetLayout()
	if err != nil {
		return WindowOutput{}, err
	}
	for _, v := range layout.Windows {
		if v.ID == id {
			info := toWindowInfo(v)
			return WindowOutput{Window: &info}, nil
		}
	}
	return WindowOutput{}, nil
}

// windowOp runs op against one window and reports its resulting state.
func (s *Server) windowOp(tool, id string, op func() error) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := requireID(tool, id); err != nil {
		return nil, WindowOutput{}, err
	}
	if err := op(); err != nil {
		s.logger.Debug("mcp tool failed", "tool", tool, "window", id, "error", err)
		return nil, WindowOutput{}, fmt.Errorf("%s: %w", tool, err)
	}
	out, err := s.windowState(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Info("mcp tool", "tool", tool, "window", id)
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	layout, err := s.daemon.GetLayout()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{
		ContainerWidth:  layout.Container.Width,
		ContainerHeight: layout.Container.Height,
		Windows:         make([]WindowInfo, 0, len(layout.Windows)),
	}
	for _, v := range layout.Windows {
		out.Windows = append(out.Windows, toWindowInfo(v))
	}
	return nil, out, nil
}

func (s *Server) handleOpenTerminal(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenTerminalInput) (*mcpsdk.CallToolResult, OpenTerminalOutput, error) {
	tab, err := s.daemon.OpenTab(strings.TrimSpace(args.Name))
	if err != nil {
		return nil, OpenTerminalOutput{}, fmt.Errorf("open_terminal: %w", err)
	}
	s.logger.Info("mcp tool", "tool", "open_terminal", "tab", tab.ID)
	return nil, OpenTerminalOutput{ID: tab.ID, TerminalID: tab.TerminalID, Name: tab.Name}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, any, error) {
	if err := requireID("close_window", args.ID); err != nil {
		return nil, nil, err
	}
	if err := s.daemon.Close(args.ID); err != nil {
		return nil, nil, fmt.Errorf("close_window: %w", err)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Close requested for window %s", args.ID)},
		},
	}, nil, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("focus_window", args.ID, func() error {
		return s.daemon.Focus(args.ID)
	})
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("move_window", args.ID, func() error {
		if args.Relative {
			return s.daemon.MoveBy(args.ID, args.X, args.Y)
		}
		return s.daemon.Move(args.ID, args.X, args.Y)
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("resize_window", args.ID, func() error {
		return s.daemon.Resize(args.ID, args.Handle, args.DX, args.DY)
	})
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("snap_window", args.ID, func() error {
		if strings.TrimSpace(args.Direction) == "" {
			return fmt.Errorf("direction is required")
		}
		return s.daemon.Snap(args.ID, args.Direction)
	})
}

func (s *Server) handleMaximizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("maximize_window", args.ID, func() error {
		return s.daemon.ToggleMaximize(args.ID)
	})
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("minimize_window", args.ID, func() error {
		return s.daemon.ToggleMinimize(args.ID)
	})
}

func (s *Server) handleResetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, _ ResetLayoutInput) (*mcpsdk.CallToolResult, ResetLayoutOutput, error) {
	if err := s.daemon.Reset(); err != nil {
		return nil, ResetLayoutOutput{}, fmt.Errorf("reset_layout: %w", err)
	}
	layout, err := s.daemon.GetLayout()
	if err != nil {
		return nil, ResetLayoutOutput{}, err
	}
	return nil, ResetLayoutOutput{Windows: len(layout.Windows)}, nil
}
