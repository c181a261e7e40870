package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/termify/floatspace/internal/workspace"
)

// SQLiteStore keeps layouts for many workspaces in one SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	name   string
}

// NewSQLiteStore opens (and migrates) the database at dbPath for workspace name.
func NewSQLiteStore(dbPath, name string) (*SQLiteStore, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, dbPath: dbPath, name: name}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		name TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := s.db.Exec(schema)
	return err
}

// LoadLayout reads the workspace row.
func (s *SQLiteStore) LoadLayout(ctx context.Context) (*workspace.Layout, error) {
	var mode, payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT mode, payload FROM layouts WHERE name = ?", s.name,
	).Scan(&mode, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout %q: %w", s.name, err)
	}

	layout := workspace.Layout{Mode: mode}
	if err := json.Unmarshal([]byte(payload), &layout.Windows); err != nil {
		return nil, fmt.Errorf("failed to parse layout %q: %w", s.name, err)
	}
	return &layout, nil
}

// UpdateLayout upserts the workspace row.
func (s *SQLiteStore) UpdateLayout(ctx context.Context, layout workspace.Layout) error {
	windows := layout.Windows
	if windows == nil {
		windows = []workspace.WindowLayout{}
	}
	payload, err := json.Marshal(windows)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layouts (name, mode, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			mode = excluded.mode,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		s.name, layout.Mode, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save layout %q: %w", s.name, err)
	}
	return nil
}

// Names lists every workspace with a saved layout.
func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM layouts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
