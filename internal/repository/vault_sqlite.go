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

// SQLiteVaultRepository implements VaultRepository using SQLite. Secrets are
// stored as ciphertext; the vault service owns the key.
type SQLiteVaultRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteVaultRepository opens (or creates) the vault store at dbPath.
func NewSQLiteVaultRepository(dbPath string) (*SQLiteVaultRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS vault_entries (
		id TEXT PRIMARY KEY,
		client TEXT NOT NULL,
		system TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		secret TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vault_client ON vault_entries(client);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteVaultRepository] Initialized with database: %s", dbPath)
	return &SQLiteVaultRepository{db: db}, nil
}

const vaultColumns = `id, client, system, username, secret, url, notes, created_at, updated_at`

func scanVaultRow(row interface{ Scan(...interface{}) error }) (*model.VaultEntry, error) {
	var e model.VaultEntry
	err := row.Scan(&e.ID, &e.Client, &e.System, &e.Username, &e.Secret,
		&e.URL, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns all vault entries ordered by client then system.
func (r *SQLiteVaultRepository) List(ctx context.Context) ([]model.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + vaultColumns + ` FROM vault_entries ORDER BY client, system`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vault entries: %w", err)
	}
	defer rows.Close()

	entries := []model.VaultEntry{}
	for rows.Next() {
		e, err := scanVaultRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get retrieves one vault entry by ID.
func (r *SQLiteVaultRepository) Get(ctx context.Context, id string) (*model.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + vaultColumns + ` FROM vault_entries WHERE id = ?`
	e, err := scanVaultRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault entry: %w", err)
	}
	return e, nil
}

// Create inserts a new vault entry.
func (r *SQLiteVaultRepository) Create(ctx context.Context, entry *model.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO vault_entries (` + vaultColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Client, entry.System,
		entry.Username, entry.Secret, entry.URL, entry.Notes,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vault entry: %w", err)
	}
	return nil
}

// Update replaces an existing vault entry.
func (r *SQLiteVaultRepository) Update(ctx context.Context, entry *model.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `UPDATE vault_entries SET client = ?, system = ?, username = ?,
		secret = ?, url = ?, notes = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, entry.Client, entry.System,
		entry.Username, entry.Secret, entry.URL, entry.Notes,
		entry.UpdatedAt, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update vault entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a vault entry by ID.
func (r *SQLiteVaultRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vault entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteVaultRepository) Close() error {
	return r.db.Close()
}

var _ VaultRepository = (*SQLiteVaultRepository)(nil)
