package repository

import (
	"context"
	"errors"
	"time"

	"fieldstock-api/internal/model"
)

// ErrNotFound is returned when a record does not exist, so handlers can map
// it to a 404 without inspecting driver errors.
var ErrNotFound = errors.New("record not found")

// ItemRepository defines inventory data access. Implementations exist for
// SQLite (the default local store), PostgreSQL, MySQL and MongoDB; the
// backend is chosen by configuration at startup.
type ItemRepository interface {
	// List returns every item, newest first.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves one item by ID.
	Get(ctx context.Context, id string) (*model.Item, error)

	// FindByBarcode retrieves the item with the given barcode, if any.
	FindByBarcode(ctx context.Context, barcode string) (*model.Item, error)

	// Create inserts a new item.
	Create(ctx context.Context, item *model.Item) error

	// Update replaces an existing item's fields (last writer wins).
	Update(ctx context.Context, item *model.Item) error

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string) error

	// BatchUpsert inserts or replaces multiple items efficiently. Used by
	// the sync buffer flush and by import batches.
	BatchUpsert(ctx context.Context, items []model.Item) error

	// ApplyMerge upserts the merged record and removes the non-keeper
	// records in one operation.
	ApplyMerge(ctx context.Context, merged model.Item, removeIDs []string) error

	// Stats returns statistics about the item store.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// VaultRepository defines credential storage. Secrets arrive already
// encrypted; this layer never sees plaintext.
type VaultRepository interface {
	List(ctx context.Context) ([]model.VaultEntry, error)
	Get(ctx context.Context, id string) (*model.VaultEntry, error)
	Create(ctx context.Context, entry *model.VaultEntry) error
	Update(ctx context.Context, entry *model.VaultEntry) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// TimeEntryRepository defines time-tracker storage.
type TimeEntryRepository interface {
	List(ctx context.Context, project string) ([]model.TimeEntry, error)
	Get(ctx context.Context, id string) (*model.TimeEntry, error)
	FindRunning(ctx context.Context, project string) (*model.TimeEntry, error)
	Create(ctx context.Context, entry *model.TimeEntry) error
	Update(ctx context.Context, entry *model.TimeEntry) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// ImportLogRepository records import/merge batches for the audit trail.
type ImportLogRepository interface {
	Insert(ctx context.Context, entry *model.ImportLog) error
	List(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error)

	// DeleteOlderThan purges audit records past the retention window and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
