package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/termify/floatspace/internal/viewport"
	"github.com/termify/floatspace/internal/workspace"
)

// ContainerSink receives measured container sizes.
type ContainerSink interface {
	SetContainer(size workspace.Size) error
}

// WatcherConfig holds configuration for the resize watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// ResizeWatcher periodically measures the viewport and forwards size changes.
type ResizeWatcher struct {
	interval time.Duration
	provider viewport.Provider
	sink     ContainerSink
	logger   *slog.Logger

	mu   sync.Mutex
	last workspace.Size
}

// NewResizeWatcher creates a watcher polling provider and feeding sink.
func NewResizeWatcher(cfg WatcherConfig, provider viewport.Provider, sink ContainerSink) *ResizeWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ResizeWatcher{
		interval: interval,
		provider: provider,
		sink:     sink,
		logger:   logger,
	}
}

// Run measures once immediately, then on every tick. Blocks until ctx is cancelled.
func (w *ResizeWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("resize watcher started", "interval", w.interval)
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("resize watcher stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// PollNow triggers an immediate measurement.
func (w *ResizeWatcher) PollNow(ctx context.Context) {
	w.poll(ctx)
}

// SetProvider swaps the viewport source and forces the next poll to report.
func (w *ResizeWatcher) SetProvider(provider viewport.Provider) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.provider = provider
	w.last = workspace.Size{}
}

func (w *ResizeWatcher) poll(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A broken provider must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("resize watcher panic recovered", "error", err)
		}
	}()

	size, err := w.provider.Size(ctx)
	if err != nil {
		w.logger.Warn("resize watcher: failed to measure viewport", "error", err)
		return
	}
	if size == w.last {
		return
	}

	w.logger.Debug("viewport resized", "width", size.Width, "height", size.Height)
	if err := w.sink.SetContainer(size); err != nil {
		w.logger.Error("resize watcher: failed to apply size", "error", err)
		return
	}
	w.last = size
}
