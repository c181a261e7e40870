package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/httpapi"
	"github.com/termify/floatspace/internal/ipc"
	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/viewport"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "floatspace daemon [--path PATH] [--socket PATH]", "Run the layout daemon in the foreground.")
	path := fs.String("path", "", "Config file path (default: ~/.config/floatspace/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: $FLOATSPACE_SOCKET or <runtime dir>/floatspace.sock)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := newLogger(level)
	logger.Info("configuration loaded", "file", res.File, "gap", cfg.GapSize, "storage", cfg.Storage.Backend, "viewport", cfg.Viewport.Provider)

	m := metrics.New()
	rt, err := newRuntime(cfg, logger, m)
	if err != nil {
		log.Fatalf("Failed to start layout engine: %v", err)
	}
	defer rt.Close()

	provider, err := viewport.FromConfig(cfg.Viewport)
	if err != nil {
		log.Fatalf("Failed to open viewport: %v", err)
	}
	defer func() { closeProvider(provider) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := daemon.NewResizeWatcher(daemon.WatcherConfig{
		Interval: cfg.PollInterval(),
		Logger:   logger,
	}, provider, rt.engine)
	go watcher.Run(ctx)

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(*socket, rt.engine, logger, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	var httpServer *httpapi.Server
	if cfg.Server.HTTPAddr != "" {
		httpServer = httpapi.NewServer(rt.engine, httpapi.Options{
			Addr:           cfg.Server.HTTPAddr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        m,
			Logger:         logger,
		})
		if err := httpServer.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if err := httpServer.Stop(stopCtx); err != nil {
				logger.Error("http server shutdown failed", "err", err)
			}
		}()
	}

	// File edits arrive on their own goroutine; funnel them into the loop below.
	fileChanges := make(chan *config.Config, 1)
	go func() {
		err := config.Watch(ctx, res.File, logger, func(next *config.Config) {
			select {
			case fileChanges <- next:
			case <-ctx.Done():
			}
		})
		if err != nil {
			logger.Warn("config watch disabled", "err", err)
		}
	}()

	apply := func(next *config.Config) {
		level.Set(next.SlogLevel())
		if err := rt.engine.ApplyConfig(next); err != nil {
			logger.Error("failed to apply config", "err", err)
			return
		}
		if next.Viewport != cfg.Viewport {
			p, err := viewport.FromConfig(next.Viewport)
			if err != nil {
				logger.Error("failed to switch viewport", "provider", next.Viewport.Provider, "err", err)
			} else {
				watcher.SetProvider(p)
				closeProvider(provider)
				provider = p
				watcher.PollNow(ctx)
			}
		}
		cfg = next
		logger.Info("config applied", "gap", cfg.GapSize, "tabs_mode", cfg.TabsMode)
	}

	reload := func() {
		next, err := loadConfig(res.File)
		if err != nil {
			logger.Error("config reload failed", "err", err)
			return
		}
		apply(next.Config)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	logger.Info("floatspace daemon started", "socket", ipcServer.SocketPath(), "http", cfg.Server.HTTPAddr)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				reload()
				continue
			}
			logger.Info("shutting down floatspace daemon", "signal", sig.String())
			return 0

		case <-reloadChan:
			reload()

		case next := <-fileChanges:
			apply(next)
		}
	}
}

// closeProvider releases providers that hold a display connection.
func closeProvider(p viewport.Provider) {
	if c, ok := p.(interface{ Close() }); ok {
		c.Close()
	}
}
