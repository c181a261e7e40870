package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/persist"
	"github.com/termify/floatspace/internal/tiling"
	"github.com/termify/floatspace/internal/window"
	"github.com/termify/floatspace/internal/workspace"
)

// Event types published to subscribers.
const (
	EventLayout   = "layout"
	EventCloseTab = "close_tab"
)

// ErrTabsRemote is returned when local tab edits are attempted while a front
// end owns the tab list.
var ErrTabsRemote = errors.New("tab list is owned by a remote front end")

// WindowView is a window as both the store and its controller see it.
type WindowView struct {
	workspace.WindowState
	Display     tiling.Rect  `json:"display"`
	Mode        string       `json:"mode"`
	Focused     bool         `json:"focused"`
	PreMaximize *tiling.Rect `json:"preMaximize,omitempty"`
}

// Event is pushed to subscribers after each applied operation.
type Event struct {
	Type      string         `json:"type"`
	Windows   []WindowView   `json:"windows,omitempty"`
	Container workspace.Size `json:"container"`
	TabID     string         `json:"tabId,omitempty"`
}

// Status summarizes the engine for status queries.
type Status struct {
	Windows     int            `json:"windows"`
	Customized  int            `json:"customized"`
	Container   workspace.Size `json:"container"`
	TopZ        int            `json:"topZ"`
	Focused     string         `json:"focused,omitempty"`
	TabsMode    string         `json:"tabsMode"`
	PendingSave bool           `json:"pendingSave"`
	Deferred    bool           `json:"deferred"`
}

// Options configures an Engine.
type Options struct {
	Store    workspace.Options
	Limits   window.Limits
	TabsMode string
	// CloseTab is called for close requests when the tab list is remote.
	CloseTab func(id string)
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// OptionsFromConfig derives engine options from the config file.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Store: workspace.Options{
			Gap:        cfg.GapSize,
			BaseZIndex: cfg.BaseZIndex,
		},
		Limits: window.Limits{
			MinWidth:        cfg.MinWindowWidth,
			MinHeight:       cfg.MinWindowHeight,
			ReachableMargin: cfg.ReachableMargin,
		},
		TabsMode: cfg.TabsMode,
	}
}

// Engine runs every layout operation through one critical section: the store
// is updated, controllers are synced, a save is scheduled and subscribers are
// told about the new layout.
type Engine struct {
	mu          sync.Mutex
	opts        Options
	store       *workspace.Store
	bridge      *persist.Bridge
	controllers map[string]*window.Controller
	host        *engineHost
	outbox      []Event

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewEngine creates an engine saving through bridge.
func NewEngine(bridge *persist.Bridge, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TabsMode == "" {
		opts.TabsMode = config.TabsLocal
	}
	if opts.Limits == (window.Limits{}) {
		opts.Limits = window.DefaultLimits()
	}
	e := &Engine{
		opts:        opts,
		store:       workspace.NewStore(opts.Store),
		bridge:      bridge,
		controllers: make(map[string]*window.Controller),
		subs:        make(map[int]func(Event)),
	}
	e.host = &engineHost{e: e}
	return e
}

// Hydrate seeds new windows from a persisted layout. Call before the first tabs arrive.
func (e *Engine) Hydrate(layout *workspace.Layout) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Hydrate(layout)
	e.opts.Logger.Info("layout hydrated", "entries", len(workspace.HydrationIndex(layout)))
}

// Subscribe registers fn for every event. The returned func unsubscribes.
// fn runs outside the engine lock and must not block.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

// SetTabs replaces the tab list.
func (e *Engine) SetTabs(tabs []workspace.Tab) error {
	if tabs == nil {
		tabs = []workspace.Tab{}
	}
	return e.do("tabs", func() error {
		e.store.SetTabs(tabs)
		return nil
	})
}

// SetContainer records a new container size.
func (e *Engine) SetContainer(size workspace.Size) error {
	return e.do("container", func() error {
		e.store.SetContainer(size)
		return nil
	})
}

// Update applies a tab list and a container size as one tick.
func (e *Engine) Update(u workspace.Update) error {
	return e.do("tabs", func() error {
		e.store.Apply(u)
		return nil
	})
}

// OpenTab appends a terminal tab. Only valid when tabs are local.
func (e *Engine) OpenTab(tab workspace.Tab) (workspace.Tab, error) {
	if tab.Type == "" {
		tab.Type = workspace.TabTypeTerminal
	}
	if tab.ID == "" {
		tab.ID = uuid.NewString()
	}
	if tab.TerminalID == "" && tab.Type == workspace.TabTypeTerminal {
		tab.TerminalID = tab.ID
	}
	if tab.Name == "" {
		tab.Name = "Terminal"
	}

	err := e.do("open", func() error {
		if e.opts.TabsMode != config.TabsLocal {
			return ErrTabsRemote
		}
		tabs := e.store.Tabs()
		for _, existing := range tabs {
			if existing.ID == tab.ID {
				return fmt.Errorf("tab %q already open", tab.ID)
			}
		}
		e.store.SetTabs(append(tabs, tab))
		return nil
	})
	return tab, err
}

// Tabs returns the current tab list.
func (e *Engine) Tabs() []workspace.Tab {
	return e.store.Tabs()
}

// Focus brings a window to the front and gives it keyboard focus.
func (e *Engine) Focus(id string) error {
	return e.withController("focus", id, func(c *window.Controller) error {
		c.Activate()
		return nil
	})
}

// Move drags a window to an absolute position.
func (e *Engine) Move(id string, pos workspace.Point) error {
	return e.withController("move", id, func(c *window.Controller) error {
		if !c.Drop(pos.X, pos.Y) {
			return fmt.Errorf("window %q cannot be moved while %s", id, c.Mode())
		}
		return nil
	})
}

// DragBy drags a window by an offset.
func (e *Engine) DragBy(id string, dx, dy int) error {
	return e.withController("move", id, func(c *window.Controller) error {
		if !c.BeginDrag() {
			return fmt.Errorf("window %q cannot be moved while %s", id, c.Mode())
		}
		c.DragBy(dx, dy)
		c.EndDrag()
		return nil
	})
}

// Resize drags a resize handle by an offset.
func (e *Engine) Resize(id string, handle window.Handle, dx, dy int) error {
	return e.withController("resize", id, func(c *window.Controller) error {
		if !c.BeginResize(handle) {
			return fmt.Errorf("window %q cannot be resized while %s", id, c.Mode())
		}
		c.ResizeBy(dx, dy)
		c.EndResize()
		return nil
	})
}

// Snap applies a snap to a window regardless of keyboard focus.
func (e *Engine) Snap(id string, dir window.Direction) error {
	return e.withController("snap", id, func(c *window.Controller) error {
		c.Snap(dir)
		return nil
	})
}

// ToggleMaximize maximizes or restores a window.
func (e *Engine) ToggleMaximize(id string) error {
	return e.withController("maximize", id, func(c *window.Controller) error {
		c.ToggleMaximize()
		return nil
	})
}

// ToggleMinimize minimizes or restores a window.
func (e *Engine) ToggleMinimize(id string) error {
	return e.withController("minimize", id, func(c *window.Controller) error {
		c.ToggleMinimize()
		return nil
	})
}

// Close requests that a window's tab be closed.
func (e *Engine) Close(id string) error {
	return e.withController("close", id, func(c *window.Controller) error {
		c.Close()
		return nil
	})
}

// HandleKey delivers a key chord to the keyboard-focused window. It reports
// whether any window acted on it.
func (e *Engine) HandleKey(chord string) (bool, error) {
	key, err := window.ParseKey(chord)
	if err != nil {
		return false, err
	}
	handled := false
	err = e.do("key", func() error {
		for _, c := range e.controllers {
			if c.HandleKey(key) {
				handled = true
			}
		}
		return nil
	})
	return handled, err
}

// PointerDown routes a press to the top-most visible window under it. Every
// other window loses keyboard focus.
func (e *Engine) PointerDown(x, y int) (string, error) {
	hit := ""
	err := e.do("pointer", func() error {
		windows := e.store.Windows()
		sort.SliceStable(windows, func(i, j int) bool { return windows[i].ZIndex > windows[j].ZIndex })
		for _, w := range windows {
			c := e.controllers[w.ID]
			if c == nil || c.Mode() == window.ModeMinimized {
				continue
			}
			if hit == "" && c.PointerDown(x, y) {
				hit = w.ID
				continue
			}
			c.Blur()
		}
		return nil
	})
	return hit, err
}

// ResetLayout clears every customization and re-grids all windows.
func (e *Engine) ResetLayout() error {
	return e.do("reset", func() error {
		e.store.ResetLayout()
		return nil
	})
}

// Windows returns the current window views in tab order.
func (e *Engine) Windows() []WindowView {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.viewsLocked()
}

// Status returns a summary of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Container:   e.store.Container(),
		TopZ:        e.store.TopZ(),
		TabsMode:    e.opts.TabsMode,
		PendingSave: e.bridge.Pending(),
		Deferred:    e.store.Pending(),
	}
	for _, w := range e.store.Windows() {
		st.Windows++
		if w.IsCustomized {
			st.Customized++
		}
		if c := e.controllers[w.ID]; c != nil && c.Focused() {
			st.Focused = w.ID
		}
	}
	return st
}

// ApplyConfig swaps in new geometry settings and save delay.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	next := OptionsFromConfig(cfg)
	e.bridge.SetDelay(cfg.SaveDelay())
	return e.do("config", func() error {
		e.opts.Store = next.Store
		e.opts.Limits = next.Limits
		e.opts.TabsMode = next.TabsMode
		for _, c := range e.controllers {
			c.SetLimits(next.Limits)
		}
		e.store.SetOptions(next.Store)
		return nil
	})
}

// Flush writes any pending layout save now.
func (e *Engine) Flush(ctx context.Context) error {
	return e.bridge.Flush(ctx)
}

func (e *Engine) withController(op, id string, fn func(c *window.Controller) error) error {
	return e.do(op, func() error {
		c, ok := e.controllers[id]
		if !ok {
			return fmt.Errorf("%w: %q", workspace.ErrWindowNotFound, id)
		}
		return fn(c)
	})
}

// do runs fn under the engine lock and commits its effects.
func (e *Engine) do(op string, fn func() error) error {
	e.mu.Lock()

	beforeStore := e.store.Windows()
	beforeViews := e.viewsLocked()

	if err := fn(); err != nil {
		e.outbox = nil
		e.mu.Unlock()
		return err
	}

	e.syncControllersLocked()
	afterStore := e.store.Windows()
	views := e.viewsLocked()

	storeChanged := !slices.Equal(beforeStore, afterStore)
	if storeChanged {
		e.bridge.ScheduleSave(afterStore)
	}
	customized := 0
	for _, w := range afterStore {
		if w.IsCustomized {
			customized++
		}
	}
	e.opts.Metrics.RecordOperation(op)
	e.opts.Metrics.RecordLayout(len(afterStore), customized)

	events := e.outbox
	e.outbox = nil
	if storeChanged || !viewsEqual(beforeViews, views) {
		events = append(events, Event{Type: EventLayout, Windows: views, Container: e.store.Container()})
	}
	e.mu.Unlock()

	e.publish(events)
	return nil
}

func (e *Engine) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	e.subMu.Lock()
	subs := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subMu.Unlock()

	for _, ev := range events {
		if ev.Type == EventCloseTab && e.opts.CloseTab != nil {
			e.opts.CloseTab(ev.TabID)
		}
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (e *Engine) syncControllersLocked() {
	windows := e.store.Windows()
	container := e.store.Container()

	live := make(map[string]bool, len(windows))
	for _, w := range windows {
		live[w.ID] = true
		c, ok := e.controllers[w.ID]
		if !ok {
			e.controllers[w.ID] = window.NewController(w, container, e.opts.Limits, e.host)
			continue
		}
		c.SetContainer(container)
		c.Sync(w)
	}
	for id := range e.controllers {
		if !live[id] {
			delete(e.controllers, id)
		}
	}
}

func (e *Engine) viewsLocked() []WindowView {
	windows := e.store.Windows()
	out := make([]WindowView, 0, len(windows))
	for _, w := range windows {
		v := WindowView{WindowState: w, Display: w.Rect(), Mode: window.ModeNormal.String()}
		if c := e.controllers[w.ID]; c != nil {
			cv := c.View()
			v.Display = cv.Rect
			v.Mode = cv.ModeName
			v.Focused = cv.Focused
			v.PreMaximize = cv.PreMaximize
		}
		out = append(out, v)
	}
	return out
}

func viewsEqual(a, b []WindowView) bool {
	return slices.EqualFunc(a, b, func(x, y WindowView) bool {
		if x.WindowState != y.WindowState || x.Display != y.Display || x.Mode != y.Mode || x.Focused != y.Focused {
			return false
		}
		if (x.PreMaximize == nil) != (y.PreMaximize == nil) {
			return false
		}
		return x.PreMaximize == nil || *x.PreMaximize == *y.PreMaximize
	})
}

// engineHost receives controller intents. It runs with the engine lock held.
type engineHost struct {
	e *Engine
}

func (h *engineHost) MoveWindow(id string, pos workspace.Point) {
	if err := h.e.store.MoveWindow(id, pos); err != nil {
		h.e.opts.Logger.Warn("move ignored", "window", id, "err", err)
	}
}

func (h *engineHost) ResizeWindow(id string, size workspace.Size) {
	if err := h.e.store.ResizeWindow(id, size); err != nil {
		h.e.opts.Logger.Warn("resize ignored", "window", id, "err", err)
	}
}

func (h *engineHost) FocusWindow(id string) {
	if _, err := h.e.store.Focus(id); err != nil {
		h.e.opts.Logger.Warn("focus ignored", "window", id, "err", err)
		return
	}
	for otherID, c := range h.e.controllers {
		if otherID != id {
			c.Blur()
		}
	}
}

func (h *engineHost) CloseWindow(id string) {
	e := h.e
	if e.opts.TabsMode == config.TabsRemote {
		e.outbox = append(e.outbox, Event{Type: EventCloseTab, TabID: id})
		return
	}
	tabs := e.store.Tabs()
	kept := tabs[:0]
	for _, tab := range tabs {
		if tab.ID != id {
			kept = append(kept, tab)
		}
	}
	e.store.SetTabs(kept)
	e.opts.Logger.Debug("tab closed", "tab", id)
}
