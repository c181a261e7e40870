package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/persist"
)

const shutdownTimeout = 5 * time.Second

// runtime is the engine plus the storage it saves through.
type runtime struct {
	engine *daemon.Engine
	bridge *persist.Bridge
	logger *slog.Logger
	closer func() error
}

func newLogger(level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openStore builds the layout store selected by cfg.Storage.
func openStore(cfg config.StorageConfig) (persist.LayoutStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.StorageMemory:
		return persist.NewMemoryStore(), noop, nil

	case config.StorageFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := persist.DefaultLayoutsDir()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		store, err := persist.NewFileStore(dir, cfg.Workspace)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.StorageSQLite:
		path := cfg.Path
		if path == "" {
			d, err := persist.DefaultLayoutsDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(d, "layouts.db")
		}
		store, err := persist.NewSQLiteStore(path, cfg.Workspace)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.StorageHTTP:
		// The save bridge owns retries, so each attempt is a single request.
		store, err := persist.NewHTTPStore(persist.HTTPOptions{
			BaseURL:       cfg.URL,
			Workspace:     cfg.Workspace,
			Token:         cfg.Token,
			Timeout:       time.Duration(cfg.TimeoutMS) * time.Millisecond,
			RatePerSecond: cfg.RateLimit,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newRuntime opens storage, loads the saved layout and builds the engine.
// A layout that cannot be loaded is logged and the engine starts empty.
func newRuntime(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*runtime, error) {
	store, closer, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	bridge := persist.NewBridge(store, persist.BridgeOptions{
		Delay: cfg.SaveDelay(),
		Retry: persist.RetryPolicy{
			MaxAttempts: cfg.Storage.MaxAttempts,
			Backoff:     time.Duration(cfg.Storage.RetryWaitMS) * time.Millisecond,
		},
		SaveTimeout: time.Duration(cfg.Storage.TimeoutMS) * time.Millisecond,
		Logger:      logger,
		Metrics:     m,
	})

	opts := daemon.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Metrics = m
	opts.CloseTab = func(id string) {
		logger.Info("close requested", "tab", id)
	}
	engine := daemon.NewEngine(bridge, opts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Storage.TimeoutMS)*time.Millisecond)
	defer cancel()
	layout, err := persist.LoadOrEmpty(ctx, store)
	if err != nil {
		logger.Warn("saved layout unavailable, starting empty", "backend", cfg.Storage.Backend, "err", err)
	} else {
		engine.Hydrate(layout)
		logger.Info("layout loaded", "backend", cfg.Storage.Backend, "windows", len(layout.Windows))
	}

	return &runtime{engine: engine, bridge: bridge, logger: logger, closer: closer}, nil
}

// Close writes any pending save and releases storage.
func (r *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.engine.Flush(ctx); err != nil {
		r.logger.Error("final layout save failed", "err", err)
	}
	r.bridge.Stop()
	if err := r.closer(); err != nil {
		r.logger.Error("failed to close storage", "err", err)
	}
}
