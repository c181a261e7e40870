package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/persist"
	"github.com/termify/floatspace/internal/workspace"
)

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.StorageFile
	cfg.Storage.Dir = t.TempDir()
	cfg.Storage.Workspace = "dev"
	return cfg
}

func TestOpenStoreBackends(t *testing.T) {
	cfg := config.DefaultConfig().Storage

	cfg.Backend = config.StorageMemory
	store, closer, err := openStore(cfg)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*persist.MemoryStore); !ok {
		t.Fatalf("memory backend returned %T", store)
	}
	if err := closer(); err != nil {
		t.Fatalf("memory close: %v", err)
	}

	cfg.Backend = config.StorageFile
	cfg.Dir = t.TempDir()
	store, _, err = openStore(cfg)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, ok := store.(*persist.FileStore); !ok {
		t.Fatalf("file backend returned %T", store)
	}

	cfg.Backend = config.StorageSQLite
	cfg.Path = filepath.Join(t.TempDir(), "layouts.db")
	store, closer, err = openStore(cfg)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*persist.SQLiteStore); !ok {
		t.Fatalf("sqlite backend returned %T", store)
	}
	if err := closer(); err != nil {
		t.Fatalf("sqlite close: %v", err)
	}

	cfg.Backend = "carrier-pigeon"
	if _, _, err := openStore(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRuntimeHTTPSaveHonorsMaxAttempts(t *testing.T) {
	var puts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts.Add(1)
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.StorageHTTP
	cfg.Storage.URL = srv.URL
	cfg.Storage.Workspace = "dev"
	cfg.Storage.MaxAttempts = 3
	cfg.Storage.RetryWaitMS = 1

	rt, err := newRuntime(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer rt.Close()

	if err := rt.engine.SetContainer(workspace.Size{Width: 1200, Height: 800}); err != nil {
		t.Fatalf("SetContainer: %v", err)
	}
	if err := rt.engine.SetTabs([]workspace.Tab{{ID: "a", Type: workspace.TabTypeTerminal, TerminalID: "term-a"}}); err != nil {
		t.Fatalf("SetTabs: %v", err)
	}
	if err := rt.engine.Flush(context.Background()); err == nil {
		t.Fatal("expected save error from failing server")
	}
	if n := puts.Load(); n != 3 {
		t.Fatalf("PUT requests = %d, want 3", n)
	}
}

func TestRuntimeRestoresSavedLayout(t *testing.T) {
	cfg := fileConfig(t)
	tabs := []workspace.Tab{
		{ID: "a", Type: workspace.TabTypeTerminal, TerminalID: "term-a", Name: "a"},
		{ID: "b", Type: workspace.TabTypeTerminal, TerminalID: "term-b", Name: "b"},
	}

	rt, err := newRuntime(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	if err := rt.engine.SetContainer(workspace.Size{Width: 1200, Height: 800}); err != nil {
		t.Fatalf("SetContainer: %v", err)
	}
	if err := rt.engine.SetTabs(tabs); err != nil {
		t.Fatalf("SetTabs: %v", err)
	}
	if err := rt.engine.Move("a", workspace.Point{X: 150, Y: 120}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	// Close flushes the debounced save.
	rt.Close()

	if _, err := os.Stat(filepath.Join(cfg.Storage.Dir, "dev.json")); err != nil {
		t.Fatalf("layout file not written: %v", err)
	}

	rt, err = newRuntime(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("newRuntime (restart): %v", err)
	}
	defer rt.Close()
	if err := rt.engine.SetContainer(workspace.Size{Width: 1200, Height: 800}); err != nil {
		t.Fatalf("SetContainer: %v", err)
	}
	if err := rt.engine.SetTabs(tabs); err != nil {
		t.Fatalf("SetTabs: %v", err)
	}

	for _, w := range rt.engine.Windows() {
		if w.ID != "a" {
			continue
		}
		if !w.IsCustomized || w.Position.X != 150 || w.Position.Y != 120 {
			t.Fatalf("restored window = %+v, want customized at (150,120)", w.WindowState)
		}
		return
	}
	t.Fatal("window a missing after restart")
}

func TestRuntimeStartsEmptyOnUnreadableLayout(t *testing.T) {
	cfg := fileConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Storage.Dir, "dev.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rt, err := newRuntime(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer rt.Close()

	if n := len(rt.engine.Windows()); n != 0 {
		t.Fatalf("windows = %d, want 0", n)
	}
}

func TestParsePair(t *testing.T) {
	x, y, err := parsePair("-40", "25")
	if err != nil || x != -40 || y != 25 {
		t.Fatalf("parsePair = %d, %d, %v", x, y, err)
	}
	if _, _, err := parsePair("1", "two"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("gap_size: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("gap_sise: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}

	if rc := runConfig([]string{"explain"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestRunLayoutPreviewArgs(t *testing.T) {
	if rc := runLayout([]string{"preview", "--cols", "40", "--rows", "10", "4"}); rc != 0 {
		t.Fatalf("preview rc=%d, want 0", rc)
	}
	if rc := runLayout([]string{"preview", "many"}); rc != 2 {
		t.Fatalf("preview with bad count rc=%d, want 2", rc)
	}
	if rc := runLayout([]string{"preview"}); rc != 2 {
		t.Fatalf("preview without count rc=%d, want 2", rc)
	}
}

func TestRunWindowUsage(t *testing.T) {
	if rc := runWindow(nil); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if rc := runWindow([]string{"move", "a", "1"}); rc != 2 {
		t.Fatalf("move with missing y rc=%d, want 2", rc)
	}
	if rc := runWindow([]string{"spin", "a"}); rc != 2 {
		t.Fatalf("unknown window command rc=%d, want 2", rc)
	}
}
