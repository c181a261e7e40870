package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.SaveDelay() != time.Second {
		t.Fatalf("expected 1s save delay, got %v", cfg.SaveDelay())
	}
	if cfg.GapSize != 4 || cfg.MinWindowWidth != 400 || cfg.MinWindowHeight != 300 {
		t.Fatalf("unexpected geometry defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Storage.Backend != StorageFile {
		t.Fatalf("expected file backend, got %q", res.Config.Storage.Backend)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BaseZIndex != 100 {
		t.Fatalf("expected base_z_index 100, got %d", res.Config.BaseZIndex)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
gap_size: 8
viewport:
  provider: static
  width: 1200
  height: 800
storage:
  backend: sqlite
  path: /tmp/layouts.db
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.GapSize != 8 {
		t.Fatalf("expected gap_size 8, got %d", cfg.GapSize)
	}
	if cfg.Viewport.Width != 1200 || cfg.Viewport.PollIntervalMS != 500 {
		t.Fatalf("unexpected viewport: %+v", cfg.Viewport)
	}
	if cfg.Storage.Backend != StorageSQLite || cfg.Storage.MaxAttempts != 3 {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if src := res.Sources["viewport.width"]; src.Kind != SourceFile || src.Line == 0 {
		t.Fatalf("expected file source for viewport.width, got %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "gap: 4\n"))
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "gap") {
		t.Fatalf("expected error to mention the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorCarriesLine(t *testing.T) {
	path := writeConfig(t, "log_level: info\ngap_size: -1\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "gap_size" || verr.Source.Line != 2 {
		t.Fatalf("expected gap_size at line 2, got %s line %d", verr.Path, verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected file:line prefix, got %q", err.Error())
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("FLOATSPACE_LOG_LEVEL", "debug")
	t.Setenv("FLOATSPACE_HTTP_ADDR", "127.0.0.1:7788")
	t.Setenv("FLOATSPACE_SAVE_DELAY_MS", "250")

	res, err := LoadFromPath(writeConfig(t, "log_level: warn\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "debug" || cfg.Server.HTTPAddr != "127.0.0.1:7788" || cfg.SaveDelayMS != 250 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if res.Sources["log_level"].Kind != SourceEnv {
		t.Fatalf("expected env source for log_level")
	}
}

func TestLoadFromPath_EnvValidationNamesVariable(t *testing.T) {
	t.Setenv("FLOATSPACE_STORAGE_BACKEND", "redis")

	_, err := LoadFromPath(writeConfig(t, ""))
	if err == nil || !strings.Contains(err.Error(), "FLOATSPACE_STORAGE_BACKEND") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative gap", func(c *Config) { c.GapSize = -1 }, "gap_size"},
		{"zero min width", func(c *Config) { c.MinWindowWidth = 0 }, "min_window_width"},
		{"margin wider than window", func(c *Config) { c.ReachableMargin = 500 }, "reachable_margin"},
		{"zero save delay", func(c *Config) { c.SaveDelayMS = 0 }, "save_delay_ms"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad tabs mode", func(c *Config) { c.TabsMode = "shared" }, "tabs_mode"},
		{"bad provider", func(c *Config) { c.Viewport.Provider = "wayland" }, "viewport.provider"},
		{"static without size", func(c *Config) { c.Viewport.Width = 0 }, "viewport"},
		{"http without url", func(c *Config) { c.Storage.Backend = StorageHTTP }, "storage.url"},
		{"no attempts", func(c *Config) { c.Storage.MaxAttempts = 0 }, "storage.max_attempts"},
		{"bad addr", func(c *Config) { c.Server.HTTPAddr = "nope" }, "server.http_addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, verr.Path)
			}
		})
	}
}

func TestMarshal_RoundTrips(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("reload marshalled config: %v", err)
	}
	if res.Config.Viewport.Provider != ViewportStatic {
		t.Fatalf("unexpected provider %q", res.Config.Viewport.Provider)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "gap_size: 4\n")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logger, func(cfg *Config) { got <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("gap_size: 12\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.GapSize != 12 {
			t.Fatalf("expected reloaded gap 12, got %d", cfg.GapSize)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
