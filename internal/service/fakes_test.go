package service

import (
	"context"
	"sync"
	"time"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/repository"
)

// fakeItemRepo is an in-memory ItemRepository that preserves insertion order.
type fakeItemRepo struct {
	mu    sync.Mutex
	items []model.Item
}

var _ repository.ItemRepository = (*fakeItemRepo)(nil)

func (f *fakeItemRepo) List(_ context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeItemRepo) Get(_ context.Context, id string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeItemRepo) FindByBarcode(_ context.Context, barcode string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].Barcode == barcode && barcode != "" {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = *item
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeItemRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeItemRepo) BatchUpsert(_ context.Context, items []model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		replaced := false
		for i := range f.items {
			if f.items[i].ID == item.ID {
				f.items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			f.items = append(f.items, item)
		}
	}
	return nil
}

func (f *fakeItemRepo) ApplyMerge(ctx context.Context, merged model.Item, removeIDs []string) error {
	_ = f.BatchUpsert(ctx, []model.Item{merged})
	for _, id := range removeIDs {
		_ = f.Delete(ctx, id)
	}
	return nil
}

func (f *fakeItemRepo) Stats(_ context.Context) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, item := range f.items {
		total += item.Quantity
	}
	return map[string]interface{}{
		"total_items":    len(f.items),
		"total_quantity": total,
	}, nil
}

func (f *fakeItemRepo) Close() error { return nil }

// fakeLogRepo records import logs in memory.
type fakeLogRepo struct {
	mu   sync.Mutex
	logs []model.ImportLog
}

var _ repository.ImportLogRepository = (*fakeLogRepo)(nil)

func (f *fakeLogRepo) Insert(_ context.Context, entry *model.ImportLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeLogRepo) List(_ context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ImportLog, len(f.logs))
	copy(out, f.logs)
	return out, int64(len(out)), nil
}

func (f *fakeLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.logs[:0]
	var deleted int64
	for _, l := range f.logs {
		if l.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return deleted, nil
}

func (f *fakeLogRepo) Close() error { return nil }

// fakeTimeRepo is an in-memory TimeEntryRepository.
type fakeTimeRepo struct {
	mu      sync.Mutex
	entries []model.TimeEntry
}

var _ repository.TimeEntryRepository = (*fakeTimeRepo)(nil)

func (f *fakeTimeRepo) List(_ context.Context, project string) ([]model.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TimeEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if project == "" || e.Project == project {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimeRepo) Get(_ context.Context, id string) (*model.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTimeRepo) FindRunning(_ context.Context, project string) (*model.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].Project == project && f.entries[i].StoppedAt == nil {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTimeRepo) Create(_ context.Context, entry *model.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeTimeRepo) Update(_ context.Context, entry *model.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == entry.ID {
			f.entries[i] = *entry
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeTimeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeTimeRepo) Close() error { return nil }

// fakeVaultRepo is an in-memory VaultRepository.
type fakeVaultRepo struct {
	mu      sync.Mutex
	entries []model.VaultEntry
}

var _ repository.VaultRepository = (*fakeVaultRepo)(nil)

func (f *fakeVaultRepo) List(_ context.Context) ([]model.VaultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.VaultEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeVaultRepo) Get(_ context.Context, id string) (*model.VaultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVaultRepo) Create(_ context.Context, entry *model.VaultEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeVaultRepo) Update(_ context.Context, entry *model.VaultEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == entry.ID {
			f.entries[i] = *entry
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeVaultRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeVaultRepo) Close() error { return nil }

// fakeExtractor returns a canned invoice extraction.
type fakeExtractor struct {
	extraction *model.InvoiceExtraction
	err        error
}

func (f *fakeExtractor) ExtractInvoice(_ context.Context, _ []byte, _ string) (*model.InvoiceExtraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction, nil
}
