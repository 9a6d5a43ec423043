package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"fieldstock-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLItemRepository implements ItemRepository using MySQL.
type MySQLItemRepository struct {
	db *sql.DB
}

// NewMySQLItemRepository creates a new MySQL item repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLItemRepository(dsn string) (*MySQLItemRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createItemTableMySQL(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLItemRepository] Initialized")
	return &MySQLItemRepository{db: db}, nil
}

func createItemTableMySQL(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		barcode VARCHAR(128) NOT NULL DEFAULT '',
		quantity INT NOT NULL DEFAULT 0,
		category VARCHAR(64) NOT NULL DEFAULT 'Other',
		subcategory VARCHAR(128) NOT NULL DEFAULT '',
		unit_price DOUBLE,
		description TEXT,
		low_stock_threshold INT,
		favorite TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_items_name (name),
		INDEX idx_items_barcode (barcode)
	)`
	_, err := db.Exec(query)
	return err
}

const mysqlItemColumns = `id, name, barcode, quantity, category, subcategory,
	unit_price, description, low_stock_threshold, favorite, created_at, updated_at`

const mysqlItemUpsert = `
	INSERT INTO items (` + mysqlItemColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		barcode = VALUES(barcode),
		quantity = VALUES(quantity),
		category = VALUES(category),
		subcategory = VALUES(subcategory),
		unit_price = VALUES(unit_price),
		description = VALUES(description),
		low_stock_threshold = VALUES(low_stock_threshold),
		favorite = VALUES(favorite),
		updated_at = VALUES(updated_at)`

// List returns every item, newest first.
func (r *MySQLItemRepository) List(ctx context.Context) ([]model.Item, error) {
	query := `SELECT ` + mysqlItemColumns + ` FROM items ORDER BY created_at DESC`
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
func (r *MySQLItemRepository) Get(ctx context.Context, id string) (*model.Item, error) {
	query := `SELECT ` + mysqlItemColumns + ` FROM items WHERE id = ?`
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
func (r *MySQLItemRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	query := `SELECT ` + mysqlItemColumns + ` FROM items WHERE barcode = ? LIMIT 1`
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
func (r *MySQLItemRepository) Create(ctx context.Context, item *model.Item) error {
	query := `INSERT INTO items (` + mysqlItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, itemArgs(item)...); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces an existing item's fields.
func (r *MySQLItemRepository) Update(ctx context.Context, item *model.Item) error {
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
func (r *MySQLItemRepository) Delete(ctx context.Context, id string) error {
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
func (r *MySQLItemRepository) BatchUpsert(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, mysqlItemUpsert)
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

// ApplyMerge upserts the merged record and deletes the non-keeper records.
func (r *MySQLItemRepository) ApplyMerge(ctx context.Context, merged model.Item, removeIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mysqlItemUpsert, itemArgs(&merged)...); err != nil {
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
func (r *MySQLItemRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
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

	return stats, nil
}

// Close closes the database connection.
func (r *MySQLItemRepository) Close() error {
	return r.db.Close()
}

var _ ItemRepository = (*MySQLItemRepository)(nil)
