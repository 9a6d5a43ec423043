package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/reconcile"
)

func newTestInventory(t *testing.T, seed ...model.Item) (*InventoryService, *fakeItemRepo) {
	t.Helper()
	repo := &fakeItemRepo{items: seed}
	svc := NewInventoryService(repo, &fakeLogRepo{}, nil, time.Minute)
	if svc == nil {
		t.Fatal("NewInventoryService returned nil")
	}
	return svc, repo
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newTestInventory(t)
	ctx := context.Background()

	if err := svc.CreateItem(ctx, &model.Item{Name: "   "}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank name error = %v, want ErrNameRequired", err)
	}
	if err := svc.CreateItem(ctx, &model.Item{Name: "Cable", Quantity: -1}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative quantity error = %v, want ErrInvalidQuantity", err)
	}

	item := &model.Item{Name: "  HDMI Cable  ", Quantity: 3, Category: "misc cables"}
	if err := svc.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == "" {
		t.Error("CreateItem did not assign an ID")
	}
	if item.Name != "HDMI Cable" {
		t.Errorf("name not trimmed: %q", item.Name)
	}
	if item.Category != model.CategoryCables {
		t.Errorf("category = %q, want %q", item.Category, model.CategoryCables)
	}
}

func TestAdjustQuantityFloorsAtZero(t *testing.T) {
	svc, repo := newTestInventory(t, model.Item{ID: "a", Name: "Screen", Quantity: 2, Category: model.CategoryVideo})
	ctx := context.Background()

	item, err := svc.AdjustQuantity(ctx, "a", -5)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", item.Quantity)
	}

	stored, _ := repo.Get(ctx, "a")
	if stored.Quantity != 0 {
		t.Errorf("stored quantity = %d, want 0", stored.Quantity)
	}

	item, err = svc.AdjustQuantity(ctx, "a", 7)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if item.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", item.Quantity)
	}
}

func TestMergeGroupSumsQuantities(t *testing.T) {
	svc, repo := newTestInventory(t,
		model.Item{ID: "a", Name: "HDMI Cable", Quantity: 3, Category: model.CategoryCables},
		model.Item{ID: "b", Name: "hdmi cable", Quantity: 2, Category: model.CategoryCables, Barcode: "X1"},
		model.Item{ID: "c", Name: "HDMI CABLE ", Quantity: 7, Category: model.CategoryCables},
	)
	ctx := context.Background()

	result, err := svc.MergeGroup(ctx, []string{"a", "b", "c"}, "b")
	if err != nil {
		t.Fatalf("MergeGroup: %v", err)
	}
	if result.Merged.ID != "b" {
		t.Errorf("keeper = %s, want b", result.Merged.ID)
	}
	if result.Merged.Quantity != 12 {
		t.Errorf("merged quantity = %d, want 12", result.Merged.Quantity)
	}
	if len(result.Removed) != 2 {
		t.Errorf("removed = %v, want 2 IDs", result.Removed)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 {
		t.Errorf("%d items remain, want 1", len(items))
	}
}

func TestMergeGroupErrors(t *testing.T) {
	svc, _ := newTestInventory(t,
		model.Item{ID: "a", Name: "Mic", Quantity: 1, Category: model.CategoryAudio},
		model.Item{ID: "b", Name: "Mic", Quantity: 1, Category: model.CategoryAudio},
	)
	ctx := context.Background()

	if _, err := svc.MergeGroup(ctx, []string{"a"}, "a"); !errors.Is(err, ErrEmptyMergeGroup) {
		t.Errorf("single-item group error = %v, want ErrEmptyMergeGroup", err)
	}
	if _, err := svc.MergeGroup(ctx, []string{"a", "b"}, "zzz"); !errors.Is(err, reconcile.ErrKeeperNotInGroup) {
		t.Errorf("keeper outside group error = %v, want ErrKeeperNotInGroup", err)
	}
}

func TestMergeAllResetsQuantities(t *testing.T) {
	svc, repo := newTestInventory(t,
		model.Item{ID: "a", Name: "HDMI Cable", Quantity: 3, Category: model.CategoryCables},
		model.Item{ID: "b", Name: "hdmi cable", Quantity: 2, Category: model.CategoryCables},
		model.Item{ID: "c", Name: "Projector", Quantity: 1, Category: model.CategoryVideo},
		model.Item{ID: "d", Name: "projector", Quantity: 4, Category: model.CategoryVideo},
		model.Item{ID: "e", Name: "Unique", Quantity: 9, Category: model.CategoryOther},
	)
	ctx := context.Background()

	results, err := svc.MergeAll(ctx)
	if err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("merged %d groups, want 2", len(results))
	}
	for _, r := range results {
		if r.Merged.Quantity != 0 {
			t.Errorf("group %s quantity = %d, want 0", r.Merged.Name, r.Merged.Quantity)
		}
	}

	items, _ := repo.List(ctx)
	if len(items) != 3 {
		t.Errorf("%d items remain, want 3", len(items))
	}
	unique, _ := repo.Get(ctx, "e")
	if unique.Quantity != 9 {
		t.Errorf("untouched item quantity = %d, want 9", unique.Quantity)
	}
}

func TestFindDuplicatesGroups(t *testing.T) {
	svc, _ := newTestInventory(t,
		model.Item{ID: "a", Name: "XLR Cable", Quantity: 1, Category: model.CategoryCables},
		model.Item{ID: "b", Name: "xlr cable", Quantity: 2, Category: model.CategoryCables},
		model.Item{ID: "c", Name: "Solo Item", Quantity: 1, Category: model.CategoryOther},
	)

	groups, err := svc.FindDuplicates(context.Background())
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Name != "xlr cable" {
		t.Errorf("group name = %q, want normalized", groups[0].Name)
	}
	if len(groups[0].Items) != 2 {
		t.Errorf("group size = %d, want 2", len(groups[0].Items))
	}
}

func TestSearchItems(t *testing.T) {
	svc, _ := newTestInventory(t,
		model.Item{ID: "a", Name: "HDMI Cable", Quantity: 1, Category: model.CategoryCables},
		model.Item{ID: "b", Name: "Cat6 Cable", Quantity: 1, Category: model.CategoryCables},
		model.Item{ID: "c", Name: "Projector", Quantity: 1, Category: model.CategoryVideo},
	)

	matched, err := svc.SearchItems(context.Background(), "CABLE")
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("got %d matches, want 2", len(matched))
	}
}

func TestSyncItemDirectWrite(t *testing.T) {
	svc, repo := newTestInventory(t)
	ctx := context.Background()

	stored, err := svc.SyncItem(ctx, model.Item{Name: "Wall Mount", Quantity: -2, Category: "bracket kit"})
	if err != nil {
		t.Fatalf("SyncItem: %v", err)
	}
	// Devices pushing new records without an ID learn the one the server
	// minted from the response.
	if stored.ID == "" {
		t.Error("stored item has no ID")
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 {
		t.Fatalf("%d items stored, want 1", len(items))
	}
	if items[0].ID != stored.ID {
		t.Errorf("stored ID = %q, repo has %q", stored.ID, items[0].ID)
	}
	if items[0].Quantity != 0 {
		t.Errorf("quantity = %d, want clamped to 0", items[0].Quantity)
	}
	if items[0].Category != model.CategoryMounts {
		t.Errorf("category = %q, want %q", items[0].Category, model.CategoryMounts)
	}
}
