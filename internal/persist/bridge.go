package persist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/workspace"
)

// DefaultSaveDelay is how long the bridge waits for the layout to settle.
const DefaultSaveDelay = 1000 * time.Millisecond

// Timer is the cancel handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler creates delayed callbacks. The default wraps time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RetryPolicy bounds how often a failed save is retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	Delay       time.Duration
	Retry       RetryPolicy
	SaveTimeout time.Duration
	Scheduler   Scheduler
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Bridge debounces layout changes into single writes to a LayoutStore.
// Saves are fire-and-forget: failures are retried, logged and counted, never
// returned to the caller that scheduled them.
type Bridge struct {
	store LayoutStore
	opts  BridgeOptions

	mu      sync.Mutex
	timer   Timer
	gen     int
	pending *workspace.Layout
	closed  bool

	saveMu sync.Mutex
}

// NewBridge creates a bridge writing to store.
func NewBridge(store LayoutStore, opts BridgeOptions) *Bridge {
	if opts.Delay <= 0 {
		opts.Delay = DefaultSaveDelay
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Bridge{store: store, opts: opts}
}

// ScheduleSave restarts the debounce timer with a new snapshot. Only the last
// snapshot scheduled before the timer fires is written.
func (b *Bridge) ScheduleSave(windows []workspace.WindowState) {
	layout := workspace.LayoutFromWindows(slices.Clone(windows))

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.cancelTimerLocked()
	b.pending = &layout
	b.gen++
	gen := b.gen
	b.timer = b.opts.Scheduler.AfterFunc(b.opts.Delay, func() {
		b.fire(gen)
	})
}

// SetDelay changes the debounce window for saves scheduled from now on.
func (b *Bridge) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d > 0 {
		b.opts.Delay = d
	}
}

// Pending reports whether a save is waiting on the timer.
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pending != nil
}

// Flush writes a pending snapshot immediately.
func (b *Bridge) Flush(ctx context.Context) error {
	b.mu.Lock()
	b.cancelTimerLocked()
	layout := b.pending
	b.pending = nil
	b.gen++
	b.mu.Unlock()

	if layout == nil {
		return nil
	}
	return b.save(ctx, *layout)
}

// Stop cancels any pending save and rejects new ones.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancelTimerLocked()
	b.pending = nil
	b.closed = true
}

func (b *Bridge) fire(gen int) {
	b.mu.Lock()
	if gen != b.gen || b.pending == nil {
		b.mu.Unlock()
		return
	}
	layout := *b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.SaveTimeout)
	defer cancel()
	if err := b.save(ctx, layout); err != nil {
		b.opts.Logger.Warn("layout save failed", "windows", len(layout.Windows), "err", err)
	}
}

func (b *Bridge) save(ctx context.Context, layout workspace.Layout) error {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	start := time.Now()
	attempts := 0
	var err error
retry:
	for attempts < b.opts.Retry.MaxAttempts {
		attempts++
		err = b.store.UpdateLayout(ctx, layout)
		if err == nil || attempts >= b.opts.Retry.MaxAttempts {
			break
		}
		b.opts.Logger.Debug("layout save attempt failed", "attempt", attempts, "err", err)
		if b.opts.Retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break retry
			case <-time.After(b.opts.Retry.Backoff):
			}
		}
	}

	b.opts.Metrics.RecordSave(attempts, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save layout after %d attempt(s): %w", attempts, err)
	}
	b.opts.Logger.Debug("layout saved", "windows", len(layout.Windows), "attempts", attempts)
	return nil
}

func (b *Bridge) cancelTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
