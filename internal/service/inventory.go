package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fieldstock-api/internal/cache"
	"fieldstock-api/internal/model"
	"fieldstock-api/internal/reconcile"
	"fieldstock-api/internal/repository"
	"fieldstock-api/pkg/uid"
)

// Validation errors surfaced to handlers.
var (
	ErrNameRequired    = errors.New("item name is required")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
	ErrEmptyMergeGroup = errors.New("merge group must contain at least two items")
)

const itemListCacheKey = "items:list"

// DuplicateGroup is one set of items sharing a normalized name.
type DuplicateGroup struct {
	Name  string       `json:"name"`
	Items []model.Item `json:"items"`
}

// MergeResult reports the outcome of one merge operation.
type MergeResult struct {
	Merged  model.Item `json:"merged"`
	Removed []string   `json:"removed"`
}

// InventoryService handles item business logic.
type InventoryService struct {
	repo     repository.ItemRepository
	logRepo  repository.ImportLogRepository
	cache    cache.Cache
	cacheTTL time.Duration
	buffer   *cache.RedisSyncBuffer
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.ItemRepository, logRepo repository.ImportLogRepository, c cache.Cache, cacheTTL time.Duration) *InventoryService {
	if repo == nil {
		return nil
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &InventoryService{
		repo:     repo,
		logRepo:  logRepo,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// SetBuffer sets the Redis buffer for write-behind sync pushes.
func (s *InventoryService) SetBuffer(buffer *cache.RedisSyncBuffer) {
	s.buffer = buffer
}

// ListItems returns all items, served from cache when possible.
func (s *InventoryService) ListItems(ctx context.Context) ([]model.Item, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, itemListCacheKey); err == nil {
			var items []model.Item
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, itemListCacheKey, data, s.cacheTTL)
		}
	}
	return items, nil
}

// GetItem retrieves one item by ID.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return s.repo.Get(ctx, id)
}

// FindByBarcode retrieves the item with the given barcode.
func (s *InventoryService) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	return s.repo.FindByBarcode(ctx, strings.TrimSpace(barcode))
}

// SearchItems returns items whose name contains the query, case-insensitive.
// Used by the barcode scanner's manual fallback.
func (s *InventoryService) SearchItems(ctx context.Context, query string) ([]model.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	matched := make([]model.Item, 0)
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// CreateItem validates and inserts a new item.
func (s *InventoryService) CreateItem(ctx context.Context, item *model.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrNameRequired
	}
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if !item.Category.Valid() {
		item.Category = reconcile.NormalizeCategory(string(item.Category))
	}

	if item.ID == "" {
		item.ID = uid.New()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	s.invalidateList(ctx)
	return nil
}

// UpdateItem replaces an item's fields. Last writer wins.
func (s *InventoryService) UpdateItem(ctx context.Context, item *model.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrNameRequired
	}
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if !item.Category.Valid() {
		item.Category = reconcile.NormalizeCategory(string(item.Category))
	}

	existing, err := s.repo.Get(ctx, item.ID)
	if err != nil {
		return err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	s.invalidateList(ctx)
	return nil
}

// DeleteItem removes an item.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

// AdjustQuantity changes an item's quantity by delta, clamped at zero.
// Returns the updated item.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id string, delta int) (*model.Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Quantity += delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	s.invalidateList(ctx)
	return item, nil
}

// SyncItem accepts a full item state pushed from a device. When the Redis
// buffer is available the write goes there first and reaches the database
// on the next flush; otherwise it is written through directly. The
// returned item carries the server-assigned ID when the device pushed a
// new record without one.
func (s *InventoryService) SyncItem(ctx context.Context, item model.Item) (model.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return model.Item{}, ErrNameRequired
	}
	if item.ID == "" {
		item.ID = uid.New()
	}
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	if !item.Category.Valid() {
		item.Category = reconcile.NormalizeCategory(string(item.Category))
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if s.buffer != nil {
		err := s.buffer.Add(ctx, item)
		if err == nil {
			s.invalidateList(ctx)
			return item, nil
		}
		log.Printf("[InventoryService] Buffer write failed, falling back to direct write: %v", err)
	}

	item.UpdatedAt = time.Now()
	if err := s.repo.BatchUpsert(ctx, []model.Item{item}); err != nil {
		return model.Item{}, fmt.Errorf("failed to sync item: %w", err)
	}
	s.invalidateList(ctx)
	return item, nil
}

// FindDuplicates groups items sharing a normalized name.
func (s *InventoryService) FindDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	groups := reconcile.FindDuplicates(items)
	result := make([]DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, DuplicateGroup{
			Name:  reconcile.NormalizeName(g[0].Name),
			Items: g,
		})
	}
	return result, nil
}

// MergeGroup merges the given items into the keeper, summing quantities.
func (s *InventoryService) MergeGroup(ctx context.Context, ids []string, keeperID string) (*MergeResult, error) {
	if len(ids) < 2 {
		return nil, ErrEmptyMergeGroup
	}

	group := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load merge group member %s: %w", id, err)
		}
		group = append(group, *item)
	}

	merged, removed, err := reconcile.MergeKeepingTotal(group, keeperID)
	if err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	if err := s.repo.ApplyMerge(ctx, merged, removed); err != nil {
		return nil, fmt.Errorf("failed to apply merge: %w", err)
	}

	s.recordMerge(ctx, 1, len(removed))
	s.invalidateList(ctx)

	log.Printf("[InventoryService] Merged %d items into %s (quantity=%d)",
		len(group), merged.ID, merged.Quantity)
	return &MergeResult{Merged: merged, Removed: removed}, nil
}

// MergeAll auto-merges every duplicate group, forcing quantities to zero so
// the next stocktake establishes the real counts.
func (s *InventoryService) MergeAll(ctx context.Context) ([]MergeResult, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	groups := reconcile.FindDuplicates(items)
	results := make([]MergeResult, 0, len(groups))
	removedTotal := 0

	for _, group := range groups {
		merged, removed := reconcile.MergeResettingToZero(group)
		merged.UpdatedAt = time.Now()

		if err := s.repo.ApplyMerge(ctx, merged, removed); err != nil {
			return results, fmt.Errorf("failed to merge group %q: %w",
				reconcile.NormalizeName(merged.Name), err)
		}
		removedTotal += len(removed)
		results = append(results, MergeResult{Merged: merged, Removed: removed})
	}

	if len(results) > 0 {
		s.recordMerge(ctx, len(results), removedTotal)
		s.invalidateList(ctx)
		log.Printf("[InventoryService] Auto-merged %d duplicate groups (%d items removed)",
			len(results), removedTotal)
	}
	return results, nil
}

// Stats returns item store statistics.
func (s *InventoryService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.Stats(ctx)
}

func (s *InventoryService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, itemListCacheKey)
	}
}

func (s *InventoryService) recordMerge(ctx context.Context, groups, removed int) {
	if s.logRepo == nil {
		return
	}
	entry := &model.ImportLog{
		ID:         uid.New(),
		Source:     model.ImportSourceMerge,
		RowsParsed: groups,
		Updated:    groups,
		Skipped:    removed,
		CreatedAt:  time.Now(),
	}
	if err := s.logRepo.Insert(ctx, entry); err != nil {
		log.Printf("[InventoryService] Failed to record merge log: %v", err)
	}
}

// CreateFlushFunc creates a flush function for the Redis sync buffer.
func CreateFlushFunc(repo repository.ItemRepository) cache.FlushFunc {
	return func(ctx context.Context, items []model.Item) error {
		return repo.BatchUpsert(ctx, items)
	}
}
