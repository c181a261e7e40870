package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/termify/floatspace/internal/workspace"
)

// DefaultLayoutsDir returns ~/.config/floatspace/layouts.
func DefaultLayoutsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "floatspace", "layouts"), nil
}

// ValidateName checks that a workspace name is usable as a file name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("workspace name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	return nil
}

// FileStore keeps one JSON layout file per workspace name.
type FileStore struct {
	dir  string
	name string
}

// NewFileStore returns a store for workspace name under dir.
func NewFileStore(dir, name string) (*FileStore, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if dir == "" {
		d, err := DefaultLayoutsDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &FileStore{dir: dir, name: name}, nil
}

// Path returns the layout file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.name+".json")
}

// LoadLayout reads the layout file.
func (s *FileStore) LoadLayout(_ context.Context) (*workspace.Layout, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to read layout %q: %w", s.name, err)
	}
	var layout workspace.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout %q: %w", s.name, err)
	}
	return &layout, nil
}

// UpdateLayout writes the layout file atomically.
func (s *FileStore) UpdateLayout(_ context.Context, layout workspace.Layout) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write layout %q: %w", s.name, err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write layout %q: %w", s.name, err)
	}
	return nil
}

// Delete removes the layout file.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.Path()); err != nil {
		return fmt.Errorf("failed to delete layout %q: %w", s.name, err)
	}
	return nil
}

// ListLayouts returns the workspace names that have a layout file in dir.
func ListLayouts(dir string) ([]string, error) {
	if dir == "" {
		d, err := DefaultLayoutsDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}
