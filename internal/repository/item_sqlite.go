package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"fieldstock-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteItemRepository implements ItemRepository using SQLite. This is the
// default backend: a single local database file, WAL mode for concurrent
// reads.
type SQLiteItemRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteItemRepository opens (or creates) the SQLite item store at dbPath.
func NewSQLiteItemRepository(dbPath string) (*SQLiteItemRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createItemTableSQLite(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteItemRepository] Initialized with database: %s", dbPath)
	return &SQLiteItemRepository{db: db}, nil
}

func createItemTableSQLite(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		barcode TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'Other',
		subcategory TEXT NOT NULL DEFAULT '',
		unit_price REAL,
		description TEXT NOT NULL DEFAULT '',
		low_stock_threshold INTEGER,
		favorite INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
	CREATE INDEX IF NOT EXISTS idx_items_barcode ON items(barcode);
	CREATE INDEX IF NOT EXISTS idx_items_updated ON items(updated_at);
	`
	_, err := db.Exec(query)
	return err
}

const sqliteItemColumns = `id, name, barcode, quantity, category, subcategory,
	unit_price, description, low_stock_threshold, favorite, created_at, updated_at`

func scanItemRow(row interface{ Scan(...interface{}) error }) (*model.Item, error) {
	var (
		item     model.Item
		price    sql.NullFloat64
		lowStock sql.NullInt64
		category string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Barcode, &item.Quantity,
		&category, &item.Subcategory, &price, &item.Description,
		&lowStock, &item.Favorite, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.Category = model.Category(category)
	if price.Valid {
		v := price.Float64
		item.UnitPrice = &v
	}
	if lowStock.Valid {
		v := int(lowStock.Int64)
		item.LowStockThreshold = &v
	}
	return &item, nil
}

func itemArgs(item *model.Item) []interface{} {
	var price interface{}
	if item.UnitPrice != nil {
		price = *item.UnitPrice
	}
	var lowStock interface{}
	if item.LowStockThreshold != nil {
		lowStock = *item.LowStockThreshold
	}
	return []interface{}{
		item.ID, item.Name, item.Barcode, item.Quantity, string(item.Category),
		item.Subcategory, price, item.Description, lowStock, item.Favorite,
		item.CreatedAt, item.UpdatedAt,
	}
}

// List returns every item, newest first.
func (r *SQLiteItemRepository) List(ctx context.Context) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + sqliteItemColumns + ` FROM items ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Get retrieves one item by ID.
func (r *SQLiteItemRepository) Get(ctx context.Context, id string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + sqliteItemColumns + ` FROM items WHERE id = ?`
	item, err := scanItemRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// FindByBarcode retrieves the first item carrying the barcode.
func (r *SQLiteItemRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + sqliteItemColumns + ` FROM items WHERE barcode = ? LIMIT 1`
	item, err := scanItemRow(r.db.QueryRowContext(ctx, query, barcode))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by barcode: %w", err)
	}
	return item, nil
}

// Create inserts a new item.
func (r *SQLiteItemRepository) Create(ctx context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO items (` + sqliteItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, itemArgs(item)...)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces an existing item's fields.
func (r *SQLiteItemRepository) Update(ctx context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `UPDATE items SET name = ?, barcode = ?, quantity = ?, category = ?,
		subcategory = ?, unit_price = ?, description = ?, low_stock_threshold = ?,
		favorite = ?, updated_at = ? WHERE id = ?`

	var price interface{}
	if item.UnitPrice != nil {
		price = *item.UnitPrice
	}
	var lowStock interface{}
	if item.LowStockThreshold != nil {
		lowStock = *item.LowStockThreshold
	}

	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.Barcode, item.Quantity, string(item.Category),
		item.Subcategory, price, item.Description, lowStock,
		item.Favorite, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item by ID.
func (r *SQLiteItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchUpsert inserts or replaces multiple items in one transaction.
func (r *SQLiteItemRepository) BatchUpsert(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (`+sqliteItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			barcode = excluded.barcode,
			quantity = excluded.quantity,
			category = excluded.category,
			subcategory = excluded.subcategory,
			unit_price = excluded.unit_price,
			description = excluded.description,
			low_stock_threshold = excluded.low_stock_threshold,
			favorite = excluded.favorite,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		if _, err := stmt.ExecContext(ctx, itemArgs(&items[i])...); err != nil {
			return fmt.Errorf("failed to batch upsert item %s: %w", items[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyMerge upserts the merged record and deletes the non-keeper records
// in a single transaction.
func (r *SQLiteItemRepository) ApplyMerge(ctx context.Context, merged model.Item, removeIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO items (` + sqliteItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			barcode = excluded.barcode,
			quantity = excluded.quantity,
			category = excluded.category,
			subcategory = excluded.subcategory,
			unit_price = excluded.unit_price,
			description = excluded.description,
			low_stock_threshold = excluded.low_stock_threshold,
			favorite = excluded.favorite,
			updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, itemArgs(&merged)...); err != nil {
		return fmt.Errorf("failed to upsert merged item: %w", err)
	}

	for _, id := range removeIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete merged item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}
	return nil
}

// Stats returns statistics about the item store.
func (r *SQLiteItemRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_items"] = count

	var totalQty sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(quantity) FROM items`).Scan(&totalQty); err == nil && totalQty.Valid {
		stats["total_quantity"] = totalQty.Int64
	}

	var lowStock int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE low_stock_threshold IS NOT NULL AND quantity <= low_stock_threshold`,
	).Scan(&lowStock); err == nil {
		stats["low_stock_items"] = lowStock
	}

	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteItemRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteItemRepository implements ItemRepository
var _ ItemRepository = (*SQLiteItemRepository)(nil)
