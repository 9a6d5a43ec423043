package reconcile

import (
	"testing"

	"fieldstock-api/internal/model"
)

// A matching candidate fills the blank barcode and applies the normalized
// category, but never touches quantity on the non-reset path.
func TestReconcileUpdatePreservesStock(t *testing.T) {
	existing := []model.Item{item("id-1", "Cat6 Cable", 10)}
	candidates := []model.Candidate{{
		Name:     "cat6 cable",
		Quantity: 5,
		Barcode:  "ABC123",
		Category: NormalizeCategory("cables"),
	}}

	plan := Reconcile(existing, candidates, false)
	if len(plan.ToInsert) != 0 {
		t.Fatalf("ToInsert = %v, want empty", plan.ToInsert)
	}
	if len(plan.ToUpdate) != 1 {
		t.Fatalf("ToUpdate has %d entries, want 1", len(plan.ToUpdate))
	}

	up := plan.ToUpdate[0]
	if up.ID != "id-1" {
		t.Errorf("update ID = %s", up.ID)
	}
	if up.Patch.Quantity != nil {
		t.Errorf("patch sets quantity (%d); existing stock must be preserved", *up.Patch.Quantity)
	}
	if up.Patch.Barcode == nil || *up.Patch.Barcode != "ABC123" {
		t.Errorf("patch.Barcode = %v, want ABC123", up.Patch.Barcode)
	}
	if up.Patch.Category == nil || *up.Patch.Category != model.CategoryCables {
		t.Errorf("patch.Category = %v, want Cables", up.Patch.Category)
	}
}

func TestReconcileResetQuantities(t *testing.T) {
	existing := []model.Item{item("id-1", "Cat6 Cable", 10)}
	candidates := []model.Candidate{
		{Name: "cat6 cable", Quantity: 5, Category: model.CategoryOther},
		{Name: "New Part", Quantity: 9, Category: model.CategoryOther},
	}

	plan := Reconcile(existing, candidates, true)

	if len(plan.ToUpdate) != 1 {
		t.Fatalf("ToUpdate has %d entries, want 1", len(plan.ToUpdate))
	}
	if q := plan.ToUpdate[0].Patch.Quantity; q == nil || *q != 0 {
		t.Errorf("reset path must patch quantity to 0, got %v", q)
	}

	if len(plan.ToInsert) != 1 {
		t.Fatalf("ToInsert has %d entries, want 1", len(plan.ToInsert))
	}
	if plan.ToInsert[0].Quantity != 0 {
		t.Errorf("inserted candidate quantity = %d, want 0 under reset", plan.ToInsert[0].Quantity)
	}
}

func TestReconcileNeverOverwritesPresentFields(t *testing.T) {
	existing := []model.Item{item("id-1", "Keypad", 2)}
	existing[0].Barcode = "KP-OLD"
	existing[0].Description = "existing notes"

	price := 101.5
	candidates := []model.Candidate{{
		Name:        "keypad",
		Barcode:     "KP-NEW",
		Description: "candidate notes",
		Price:       &price,
		Category:    model.CategoryOther,
	}}

	plan := Reconcile(existing, candidates, false)
	up := plan.ToUpdate[0]

	if up.Patch.Barcode != nil {
		t.Errorf("present barcode must not be overwritten: %v", *up.Patch.Barcode)
	}
	if up.Patch.Description != nil {
		t.Errorf("present description must not be overwritten: %v", *up.Patch.Description)
	}
	// Price always follows the candidate when it has one.
	if up.Patch.Price == nil || *up.Patch.Price != price {
		t.Errorf("patch.Price = %v, want %v", up.Patch.Price, price)
	}
	// Category Other never overwrites.
	if up.Patch.Category != nil {
		t.Errorf("default category must not overwrite, got %v", *up.Patch.Category)
	}
}

func TestReconcileFirstMatchOnly(t *testing.T) {
	existing := []model.Item{
		item("first", "Wall Plate", 1),
		item("second", "wall plate", 2),
	}
	candidates := []model.Candidate{{Name: "WALL PLATE", Category: model.CategoryOther}}

	plan := Reconcile(existing, candidates, false)
	if len(plan.ToUpdate) != 1 || plan.ToUpdate[0].ID != "first" {
		t.Fatalf("candidate must link to the first match only, got %+v", plan.ToUpdate)
	}
}

func TestReconcileInsertUnmatched(t *testing.T) {
	plan := Reconcile(nil, []model.Candidate{
		{Name: "Brand New", Quantity: 4, Category: model.CategorySpeakers},
	}, false)

	if len(plan.ToInsert) != 1 {
		t.Fatalf("ToInsert has %d entries, want 1", len(plan.ToInsert))
	}
	if plan.ToInsert[0].Quantity != 4 {
		t.Errorf("non-reset insert keeps its quantity, got %d", plan.ToInsert[0].Quantity)
	}
}

func TestCandidatesFromInvoice(t *testing.T) {
	inv := &model.InvoiceExtraction{
		Vendor: "ADI",
		LineItems: []model.InvoiceLineItem{
			{Description: " Cat6 Cable 1000ft ", Quantity: 2, UnitPrice: 189.99, SKU: "CAT6-1K", Category: "wire"},
			{Description: "Install labor", Quantity: 3, TotalPrice: 450},
			{Description: "", Quantity: 1, UnitPrice: 10},
			{Description: "Misc freight", Quantity: -2},
		},
	}

	got := CandidatesFromInvoice(inv)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}

	first := got[0]
	if first.Name != "Cat6 Cable 1000ft" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Category != model.CategoryCables {
		t.Errorf("category = %q, want Cables", first.Category)
	}
	if first.Price == nil || *first.Price != 189.99 {
		t.Errorf("price = %v", first.Price)
	}
	if first.Barcode != "CAT6-1K" {
		t.Errorf("barcode = %q", first.Barcode)
	}

	// Unit price derived from the line total when absent.
	second := got[1]
	if second.Price == nil || *second.Price != 150 {
		t.Errorf("derived price = %v, want 150", second.Price)
	}

	// Negative quantities clamp to zero.
	if got[2].Quantity != 0 {
		t.Errorf("clamped quantity = %d, want 0", got[2].Quantity)
	}

	if CandidatesFromInvoice(nil) != nil {
		t.Error("nil extraction should produce nil candidates")
	}
}

// Extractions frequently come back with the category blank while the
// description names the product. Classify from the description then.
func TestCandidatesFromInvoiceCategoryFallback(t *testing.T) {
	inv := &model.InvoiceExtraction{
		LineItems: []model.InvoiceLineItem{
			{Description: "In-Ceiling Speaker", Quantity: 6, UnitPrice: 89},
			{Description: "Ceiling Speaker", Quantity: 2, Category: "hdmi"},
			{Description: "Install labor", Quantity: 3},
		},
	}

	got := CandidatesFromInvoice(inv)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].Category != model.CategorySpeakers {
		t.Errorf("blank category = %q, want Speakers from the description", got[0].Category)
	}
	if got[1].Category != model.CategoryVideo {
		t.Errorf("category = %q, want the extracted category to win", got[1].Category)
	}
	if got[2].Category != model.CategoryOther {
		t.Errorf("category = %q, want Other when nothing matches", got[2].Category)
	}
}
