package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/pkg/metrics"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore keeps sheets in SQLite. Rows are stored as JSON arrays of cells
// in insertion order; nothing is ever updated or deleted.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (or creates) the database at dsn. ":memory:" opens a
// private in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	memory := dsn == ":memory:"
	if memory {
		dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrStore, err)
	}
	// SQLite serialises writers anyway; one connection also keeps a shared
	// in-memory database alive for the store's lifetime.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrStore, err)
	}
	if !memory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: enable WAL mode: %w", ErrStore, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheets (
		name TEXT PRIMARY KEY,
		headers TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_rows (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet TEXT NOT NULL REFERENCES sheets(name),
		cells TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, seq);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create tables: %w", ErrStore, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// EnsureSheet implements Store.
func (s *SQLiteStore) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("%w: encode headers: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sheets (name, headers, created_at) VALUES (?, ?, ?)`,
		sheet, string(h), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: create sheet %s: %w", ErrStore, sheet, err)
	}
	return nil
}

// ReadAll implements Store.
func (s *SQLiteStore) ReadAll(ctx context.Context, sheet string) (model.Table, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("read_all", float64(time.Since(start).Milliseconds())) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rawHeaders string
	err := s.db.QueryRowContext(ctx, `SELECT headers FROM sheets WHERE name = ?`, sheet).Scan(&rawHeaders)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: read sheet %s: %w", ErrStore, sheet, err)
	}

	var t model.Table
	if err := json.Unmarshal([]byte(rawHeaders), &t.Headers); err != nil {
		return model.Table{}, fmt.Errorf("%w: decode headers of %s: %w", ErrStore, sheet, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY seq`, sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: read rows of %s: %w", ErrStore, sheet, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return model.Table{}, fmt.Errorf("%w: scan row of %s: %w", ErrStore, sheet, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return model.Table{}, fmt.Errorf("%w: decode row of %s: %w", ErrStore, sheet, err)
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("%w: iterate rows of %s: %w", ErrStore, sheet, err)
	}
	return t, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, sheet string, row []string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append", float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sheets WHERE name = ?`, sheet).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	if err != nil {
		return fmt.Errorf("%w: look up sheet %s: %w", ErrStore, sheet, err)
	}

	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: encode row: %w", ErrStore, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sheet_rows (sheet, cells) VALUES (?, ?)`, sheet, string(cells)); err != nil {
		return fmt.Errorf("%w: append to %s: %w", ErrStore, sheet, err)
	}
	return nil
}
