package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"fieldstock-api/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteImportLogRepository implements ImportLogRepository using SQLite.
type SQLiteImportLogRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteImportLogRepository opens (or creates) the audit-log store.
func NewSQLiteImportLogRepository(dbPath string) (*SQLiteImportLogRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS import_logs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		vendor TEXT NOT NULL DEFAULT '',
		rows_parsed INTEGER NOT NULL DEFAULT 0,
		inserted INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		reset_quantities INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_import_logs_created ON import_logs(created_at);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteImportLogRepository] Initialized with database: %s", dbPath)
	return &SQLiteImportLogRepository{db: db}, nil
}

// Insert records one import batch.
func (r *SQLiteImportLogRepository) Insert(ctx context.Context, entry *model.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO import_logs
		(id, source, filename, vendor, rows_parsed, inserted, updated, skipped, reset_quantities, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Source, entry.Filename,
		entry.Vendor, entry.RowsParsed, entry.Inserted, entry.Updated,
		entry.Skipped, entry.ResetQuantities, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert import log: %w", err)
	}
	return nil
}

// List returns audit records newest first, with the total count for paging.
func (r *SQLiteImportLogRepository) List(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import logs: %w", err)
	}

	query := `SELECT id, source, filename, vendor, rows_parsed, inserted, updated,
		skipped, reset_quantities, created_at
		FROM import_logs ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := []model.ImportLog{}
	for rows.Next() {
		var e model.ImportLog
		if err := rows.Scan(&e.ID, &e.Source, &e.Filename, &e.Vendor,
			&e.RowsParsed, &e.Inserted, &e.Updated, &e.Skipped,
			&e.ResetQuantities, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, total, rows.Err()
}

// DeleteOlderThan purges audit records created before the cutoff.
func (r *SQLiteImportLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM import_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete import logs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("[SQLiteImportLogRepository] Purged %d audit records older than %v", deleted, cutoff)
	}
	return deleted, nil
}

// Close closes the database connection.
func (r *SQLiteImportLogRepository) Close() error {
	return r.db.Close()
}

var _ ImportLogRepository = (*SQLiteImportLogRepository)(nil)
