package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"fieldstock-api/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteTimeEntryRepository implements TimeEntryRepository using SQLite.
type SQLiteTimeEntryRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteTimeEntryRepository opens (or creates) the time-tracker store.
func NewSQLiteTimeEntryRepository(dbPath string) (*SQLiteTimeEntryRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		task TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		stopped_at DATETIME,
		notes TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_time_project ON time_entries(project);
	CREATE INDEX IF NOT EXISTS idx_time_started ON time_entries(started_at);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteTimeEntryRepository] Initialized with database: %s", dbPath)
	return &SQLiteTimeEntryRepository{db: db}, nil
}

const timeColumns = `id, project, task, started_at, stopped_at, notes`

func scanTimeRow(row interface{ Scan(...interface{}) error }) (*model.TimeEntry, error) {
	var (
		e       model.TimeEntry
		stopped sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Project, &e.Task, &e.StartedAt, &stopped, &e.Notes); err != nil {
		return nil, err
	}
	if stopped.Valid {
		t := stopped.Time
		e.StoppedAt = &t
	}
	return &e, nil
}

// List returns entries newest first, optionally filtered by project.
func (r *SQLiteTimeEntryRepository) List(ctx context.Context, project string) ([]model.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + timeColumns + ` FROM time_entries`
	args := []interface{}{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := []model.TimeEntry{}
	for rows.Next() {
		e, err := scanTimeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get retrieves one time entry by ID.
func (r *SQLiteTimeEntryRepository) Get(ctx context.Context, id string) (*model.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + timeColumns + ` FROM time_entries WHERE id = ?`
	e, err := scanTimeRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// FindRunning returns the open entry for a project, or ErrNotFound.
func (r *SQLiteTimeEntryRepository) FindRunning(ctx context.Context, project string) (*model.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + timeColumns + ` FROM time_entries
		WHERE project = ? AND stopped_at IS NULL
		ORDER BY started_at DESC LIMIT 1`
	e, err := scanTimeRow(r.db.QueryRowContext(ctx, query, project))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find running entry: %w", err)
	}
	return e, nil
}

// Create inserts a new time entry.
func (r *SQLiteTimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stopped interface{}
	if entry.StoppedAt != nil {
		stopped = *entry.StoppedAt
	}

	query := `INSERT INTO time_entries (` + timeColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Project, entry.Task,
		entry.StartedAt, stopped, entry.Notes)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}
	return nil
}

// Update replaces an existing time entry.
func (r *SQLiteTimeEntryRepository) Update(ctx context.Context, entry *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stopped interface{}
	if entry.StoppedAt != nil {
		stopped = *entry.StoppedAt
	}

	query := `UPDATE time_entries SET project = ?, task = ?, started_at = ?,
		stopped_at = ?, notes = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, entry.Project, entry.Task,
		entry.StartedAt, stopped, entry.Notes, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a time entry by ID.
func (r *SQLiteTimeEntryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteTimeEntryRepository) Close() error {
	return r.db.Close()
}

var _ TimeEntryRepository = (*SQLiteTimeEntryRepository)(nil)
