package reconcile

import (
	"errors"
	"testing"
	"time"

	"fieldstock-api/internal/model"
)

func item(id, name string, qty int) model.Item {
	return model.Item{
		ID:        id,
		Name:      name,
		Quantity:  qty,
		Category:  model.CategoryOther,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFindDuplicates(t *testing.T) {
	items := []model.Item{
		item("1", "HDMI Cable", 3),
		item("2", "Cat6 Jack", 50),
		item("3", "hdmi cable ", 2),
		item("4", "HDMI CABLE", 7),
		item("5", "Wall Plate", 10),
	}

	groups := FindDuplicates(items)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	group := groups[0]
	if len(group) != 3 {
		t.Fatalf("group size = %d, want 3", len(group))
	}

	// First-occurrence order within the group.
	wantIDs := []string{"1", "3", "4"}
	for i, want := range wantIDs {
		if group[i].ID != want {
			t.Errorf("group[%d].ID = %s, want %s", i, group[i].ID, want)
		}
	}

	// Every member shares the normalized name.
	key := NormalizeName(group[0].Name)
	for _, m := range group {
		if NormalizeName(m.Name) != key {
			t.Errorf("member %s has key %q, want %q", m.ID, NormalizeName(m.Name), key)
		}
	}
}

func TestFindDuplicatesNoGroups(t *testing.T) {
	items := []model.Item{
		item("1", "Speaker", 1),
		item("2", "Camera", 1),
	}
	if groups := FindDuplicates(items); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
	if groups := FindDuplicates(nil); len(groups) != 0 {
		t.Errorf("nil input: got %d groups", len(groups))
	}
}

func TestMergeKeepingTotal(t *testing.T) {
	price := 24.99
	group := []model.Item{
		item("a", "HDMI Cable", 3),
		item("b", "hdmi cable ", 2),
		item("c", "HDMI CABLE", 7),
	}
	group[0].Barcode = "HD-2M"
	group[2].UnitPrice = &price
	group[2].Description = "2m high speed"

	merged, removeIDs, err := MergeKeepingTotal(group, "b")
	if err != nil {
		t.Fatalf("MergeKeepingTotal: %v", err)
	}

	// Keeper supplies identity; quantity is the group total.
	if merged.ID != "b" {
		t.Errorf("merged.ID = %s, want b", merged.ID)
	}
	if merged.Quantity != 12 {
		t.Errorf("merged.Quantity = %d, want 12", merged.Quantity)
	}

	// Missing optional fields fill from the group in order.
	if merged.Barcode != "HD-2M" {
		t.Errorf("merged.Barcode = %q, want HD-2M", merged.Barcode)
	}
	if merged.UnitPrice == nil || *merged.UnitPrice != price {
		t.Errorf("merged.UnitPrice = %v, want %v", merged.UnitPrice, price)
	}
	if merged.Description != "2m high speed" {
		t.Errorf("merged.Description = %q", merged.Description)
	}

	if len(removeIDs) != 2 || removeIDs[0] != "a" || removeIDs[1] != "c" {
		t.Errorf("removeIDs = %v, want [a c]", removeIDs)
	}
}

func TestMergeKeepingTotalKeeperFieldsWin(t *testing.T) {
	keeperPrice, otherPrice := 9.99, 14.99
	group := []model.Item{
		item("a", "Keypad", 1),
		item("b", "keypad", 1),
	}
	group[0].UnitPrice = &keeperPrice
	group[0].Barcode = "KP-1"
	group[1].UnitPrice = &otherPrice
	group[1].Barcode = "KP-2"

	merged, _, err := MergeKeepingTotal(group, "a")
	if err != nil {
		t.Fatalf("MergeKeepingTotal: %v", err)
	}
	if *merged.UnitPrice != keeperPrice {
		t.Errorf("keeper price overwritten: %v", *merged.UnitPrice)
	}
	if merged.Barcode != "KP-1" {
		t.Errorf("keeper barcode overwritten: %q", merged.Barcode)
	}
}

func TestMergeKeepingTotalUnknownKeeper(t *testing.T) {
	group := []model.Item{item("a", "x", 1), item("b", "x", 2)}
	if _, _, err := MergeKeepingTotal(group, "zzz"); !errors.Is(err, ErrKeeperNotInGroup) {
		t.Fatalf("error = %v, want ErrKeeperNotInGroup", err)
	}
}

// The bulk auto-merge path always resets quantity to zero, no matter what
// the group held. Distinct policy from the single-group merge.
func TestMergeResettingToZero(t *testing.T) {
	group := []model.Item{
		item("a", "Cat6 Jack", 40),
		item("b", "cat6 jack", 25),
	}
	group[1].Description = "keystone, white"

	merged, removeIDs := MergeResettingToZero(group)
	if merged.ID != "a" {
		t.Errorf("keeper = %s, want first member", merged.ID)
	}
	if merged.Quantity != 0 {
		t.Errorf("merged.Quantity = %d, want 0", merged.Quantity)
	}
	if merged.Description != "keystone, white" {
		t.Errorf("merged.Description = %q", merged.Description)
	}
	if len(removeIDs) != 1 || removeIDs[0] != "b" {
		t.Errorf("removeIDs = %v, want [b]", removeIDs)
	}

	if _, ids := MergeResettingToZero(nil); ids != nil {
		t.Errorf("empty group should produce no removals, got %v", ids)
	}
}
