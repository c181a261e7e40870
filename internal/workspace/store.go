package workspace

import (
	"fmt"
	"slices"
	"sync"

	"github.com/termify/floatspace/internal/tiling"
)

// Options tunes grid placement and stacking.
type Options struct {
	Gap        int
	BaseZIndex int
}

// DefaultOptions returns the stock gap and z-index base.
func DefaultOptions() Options {
	return Options{
		Gap:        tiling.DefaultGap,
		BaseZIndex: DefaultBaseZIndex,
	}
}

// Update carries one tick of external input. A nil Tabs leaves the tab list
// untouched; a non-nil empty slice closes every window.
type Update struct {
	Tabs      []Tab
	Container *Size
}

// Store owns the window states of one workspace. All mutations are serialized.
type Store struct {
	mu        sync.Mutex
	opts      Options
	windows   []WindowState
	tabs      []Tab
	tabsDirty bool
	container Size
	focus     *FocusStack
	persisted map[string]WindowLayout
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.Gap < 0 {
		opts.Gap = tiling.DefaultGap
	}
	return &Store{
		opts:      opts,
		focus:     NewFocusStack(opts.BaseZIndex),
		persisted: make(map[string]WindowLayout),
	}
}

// Hydrate installs the persisted layout used to seed windows that do not exist yet.
// Each entry is consumed by the first window created for its terminal.
func (s *Store) Hydrate(layout *Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persisted = HydrationIndex(layout)
}

// SetTabs reconciles the window list against a new tab list.
func (s *Store) SetTabs(tabs []Tab) bool {
	if tabs == nil {
		tabs = []Tab{}
	}
	return s.Apply(Update{Tabs: tabs})
}

// SetContainer records a new container size and re-grids managed windows.
func (s *Store) SetContainer(size Size) bool {
	return s.Apply(Update{Container: &size})
}

// Apply folds one tick of input into the store: tab reconciliation first, then
// the resize recompute, in a single critical section. It reports whether any
// window state changed. Layout is deferred while the container is unmeasured.
func (s *Store) Apply(u Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	containerChanged := false
	if u.Container != nil && *u.Container != s.container {
		s.container = *u.Container
		containerChanged = true
	}
	if u.Tabs != nil {
		s.tabs = slices.Clone(u.Tabs)
		s.tabsDirty = true
	}

	if !s.container.Measured() {
		return false
	}

	before := slices.Clone(s.windows)

	if s.tabsDirty {
		res := Reconcile(ReconcileInput{
			Tabs:      s.tabs,
			Previous:  s.windows,
			Container: s.container,
			Persisted: s.persisted,
			TopZ:      s.focus.Top(),
			Gap:       s.opts.Gap,
		})
		s.windows = res.Windows
		s.focus.Raise(res.TopZ)
		for _, terminalID := range res.Hydrated {
			delete(s.persisted, terminalID)
		}
		s.tabsDirty = false
	}
	if containerChanged {
		s.windows = RecomputeForResize(s.windows, s.container, s.opts.Gap)
	}

	return !slices.Equal(before, s.windows)
}

// SetOptions swaps gap and z-index settings and re-grids managed windows.
func (s *Store) SetOptions(opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Gap < 0 {
		opts.Gap = tiling.DefaultGap
	}
	s.opts = opts
	s.focus.Raise(opts.BaseZIndex)
	if !s.container.Measured() {
		return false
	}
	before := slices.Clone(s.windows)
	s.windows = RecomputeForResize(s.windows, s.container, s.opts.Gap)
	return !slices.Equal(before, s.windows)
}

// MoveWindow records a user drag. The window is pinned out of the grid.
func (s *Store) MoveWindow(id string, pos Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexLocked(id)
	if err != nil {
		return err
	}
	s.windows[i].Position = pos
	s.windows[i].IsCustomized = true
	return nil
}

// ResizeWindow records a user resize. The window is pinned out of the grid.
func (s *Store) ResizeWindow(id string, size Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexLocked(id)
	if err != nil {
		return err
	}
	s.windows[i].Size = size
	s.windows[i].IsCustomized = true
	return nil
}

// Focus brings a window to the front and returns its new z-index.
func (s *Store) Focus(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexLocked(id)
	if err != nil {
		return 0, err
	}
	z := s.focus.Next()
	s.windows[i].ZIndex = z
	return z, nil
}

// ResetLayout clears every customization and re-grids all windows.
// Persisted seeds are dropped so closed terminals do not come back pinned.
func (s *Store) ResetLayout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.windows {
		s.windows[i].IsCustomized = false
	}
	s.persisted = make(map[string]WindowLayout)
	s.windows = RecomputeForResize(s.windows, s.container, s.opts.Gap)
}

// Windows returns a copy of the window states in tab order.
func (s *Store) Windows() []WindowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.windows)
}

// Window returns one window state.
func (s *Store) Window(id string) (WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexLocked(id)
	if err != nil {
		return WindowState{}, err
	}
	return s.windows[i], nil
}

// Tabs returns the last tab list handed to the store.
func (s *Store) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.tabs)
}

// Container returns the last measured container size.
func (s *Store) Container() Size {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.container
}

// TopZ returns the current top of the focus stack.
func (s *Store) TopZ() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.focus.Top()
}

// Pending reports whether tabs are waiting for a measured container.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tabsDirty
}

func (s *Store) indexLocked(id string) (int, error) {
	for i := range s.windows {
		if s.windows[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrWindowNotFound, id)
}
