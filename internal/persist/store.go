package persist

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/termify/floatspace/internal/workspace"
)

// ErrLayoutNotFound is returned by LoadLayout when nothing was saved yet.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutStore is the layout-storage collaborator the bridge writes to.
type LayoutStore interface {
	LoadLayout(ctx context.Context) (*workspace.Layout, error)
	UpdateLayout(ctx context.Context, layout workspace.Layout) error
}

// MemoryStore keeps the last layout in process.
type MemoryStore struct {
	mu      sync.Mutex
	layout  *workspace.Layout
	updates int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadLayout returns a copy of the saved layout.
func (m *MemoryStore) LoadLayout(_ context.Context) (*workspace.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.layout == nil {
		return nil, ErrLayoutNotFound
	}
	out := *m.layout
	out.Windows = slices.Clone(m.layout.Windows)
	return &out, nil
}

// UpdateLayout replaces the saved layout.
func (m *MemoryStore) UpdateLayout(_ context.Context, layout workspace.Layout) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layout.Windows = slices.Clone(layout.Windows)
	m.layout = &layout
	m.updates++
	return nil
}

// Updates returns how many times UpdateLayout was called.
func (m *MemoryStore) Updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updates
}

// LoadOrEmpty loads the saved layout, treating a missing one as empty.
func LoadOrEmpty(ctx context.Context, store LayoutStore) (*workspace.Layout, error) {
	layout, err := store.LoadLayout(ctx)
	if errors.Is(err, ErrLayoutNotFound) {
		return &workspace.Layout{Mode: workspace.LayoutModeFloating}, nil
	}
	if err != nil {
		return nil, err
	}
	return layout, nil
}
