package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
)

// Viewport providers.
const (
	ViewportStatic   = "static"
	ViewportTerminal = "terminal"
	ViewportX11      = "x11"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageHTTP   = "http"
	StorageMemory = "memory"
)

// Tab ownership modes.
const (
	TabsLocal  = "local"  // the daemon owns the tab list
	TabsRemote = "remote" // a front end owns it and receives close requests
)

// ViewportConfig selects where the container size comes from.
type ViewportConfig struct {
	Provider       string `yaml:"provider"`
	Width          int    `yaml:"width"`       // static provider
	Height         int    `yaml:"height"`      // static provider
	CellWidth      int    `yaml:"cell_width"`  // terminal provider, pixels per column
	CellHeight     int    `yaml:"cell_height"` // terminal provider, pixels per row
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

// StorageConfig selects and tunes the layout store.
type StorageConfig struct {
	Backend     string  `yaml:"backend"`
	Workspace   string  `yaml:"workspace"`
	Dir         string  `yaml:"dir"`  // file backend
	Path        string  `yaml:"path"` // sqlite backend
	URL         string  `yaml:"url"`  // http backend
	Token       string  `yaml:"token"`
	TimeoutMS   int     `yaml:"timeout_ms"`
	MaxAttempts int     `yaml:"max_attempts"`
	RetryWaitMS int     `yaml:"retry_wait_ms"`
	RateLimit   float64 `yaml:"rate_limit"`
}

// ServerConfig configures the HTTP/WebSocket front end.
type ServerConfig struct {
	HTTPAddr       string   `yaml:"http_addr"` // empty disables the server
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config is the effective floatspace configuration.
type Config struct {
	GapSize         int    `yaml:"gap_size"`
	MinWindowWidth  int    `yaml:"min_window_width"`
	MinWindowHeight int    `yaml:"min_window_height"`
	ReachableMargin int    `yaml:"reachable_margin"`
	BaseZIndex      int    `yaml:"base_z_index"`
	SaveDelayMS     int    `yaml:"save_delay_ms"`
	LogLevel        string `yaml:"log_level"`
	TabsMode        string `yaml:"tabs_mode"`

	Viewport ViewportConfig `yaml:"viewport"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		GapSize:         4,
		MinWindowWidth:  400,
		MinWindowHeight: 300,
		ReachableMargin: 100,
		BaseZIndex:      100,
		SaveDelayMS:     1000,
		LogLevel:        "info",
		TabsMode:        TabsLocal,
		Viewport: ViewportConfig{
			Provider:       ViewportStatic,
			Width:          1280,
			Height:         800,
			CellWidth:      9,
			CellHeight:     18,
			PollIntervalMS: 500,
		},
		Storage: StorageConfig{
			Backend:     StorageFile,
			Workspace:   "default",
			TimeoutMS:   10000,
			MaxAttempts: 3,
			RetryWaitMS: 250,
		},
		Server: ServerConfig{
			HTTPAddr: "",
		},
	}
}

// SaveDelay returns the debounce window for layout saves.
func (c *Config) SaveDelay() time.Duration {
	return time.Duration(c.SaveDelayMS) * time.Millisecond
}

// PollInterval returns the viewport polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Viewport.PollIntervalMS) * time.Millisecond
}

// SlogLevel maps log_level onto slog levels.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.MinWindowWidth < 1 {
		return &ValidationError{Path: "min_window_width", Err: fmt.Errorf("min_window_width must be > 0")}
	}
	if c.MinWindowHeight < 1 {
		return &ValidationError{Path: "min_window_height", Err: fmt.Errorf("min_window_height must be > 0")}
	}
	if c.ReachableMargin < 0 || c.ReachableMargin > c.MinWindowWidth {
		return &ValidationError{Path: "reachable_margin", Err: fmt.Errorf("reachable_margin must be between 0 and min_window_width")}
	}
	if c.BaseZIndex < 0 {
		return &ValidationError{Path: "base_z_index", Err: fmt.Errorf("base_z_index must be >= 0")}
	}
	if c.SaveDelayMS < 1 {
		return &ValidationError{Path: "save_delay_ms", Err: fmt.Errorf("save_delay_ms must be > 0")}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.TabsMode {
	case TabsLocal, TabsRemote:
	default:
		return &ValidationError{Path: "tabs_mode", Err: fmt.Errorf("tabs_mode must be one of: local, remote")}
	}

	if err := c.Viewport.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if c.Server.HTTPAddr != "" {
		if _, _, err := net.SplitHostPort(c.Server.HTTPAddr); err != nil {
			return &ValidationError{Path: "server.http_addr", Err: fmt.Errorf("invalid listen address: %w", err)}
		}
	}
	return nil
}

func (v ViewportConfig) validate() error {
	switch v.Provider {
	case ViewportStatic:
		if v.Width < 1 || v.Height < 1 {
			return &ValidationError{Path: "viewport", Err: fmt.Errorf("static viewport needs positive width and height")}
		}
	case ViewportTerminal:
		if v.CellWidth < 1 || v.CellHeight < 1 {
			return &ValidationError{Path: "viewport", Err: fmt.Errorf("terminal viewport needs positive cell_width and cell_height")}
		}
	case ViewportX11:
	default:
		return &ValidationError{Path: "viewport.provider", Err: fmt.Errorf("provider must be one of: static, terminal, x11")}
	}
	if v.PollIntervalMS < 10 {
		return &ValidationError{Path: "viewport.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= 10")}
	}
	return nil
}

func (s StorageConfig) validate() error {
	if strings.TrimSpace(s.Workspace) == "" {
		return &ValidationError{Path: "storage.workspace", Err: fmt.Errorf("workspace is required")}
	}
	switch s.Backend {
	case StorageFile, StorageSQLite, StorageMemory:
	case StorageHTTP:
		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ValidationError{Path: "storage.url", Err: fmt.Errorf("http backend needs an absolute url")}
		}
	default:
		return &ValidationError{Path: "storage.backend", Err: fmt.Errorf("backend must be one of: file, sqlite, http, memory")}
	}
	if s.MaxAttempts < 1 {
		return &ValidationError{Path: "storage.max_attempts", Err: fmt.Errorf("max_attempts must be >= 1")}
	}
	if s.TimeoutMS < 1 {
		return &ValidationError{Path: "storage.timeout_ms", Err: fmt.Errorf("timeout_ms must be > 0")}
	}
	if s.RetryWaitMS < 0 {
		return &ValidationError{Path: "storage.retry_wait_ms", Err: fmt.Errorf("retry_wait_ms must be >= 0")}
	}
	if s.RateLimit < 0 {
		return &ValidationError{Path: "storage.rate_limit", Err: fmt.Errorf("rate_limit must be >= 0")}
	}
	return nil
}
