package reconcile

import (
	"strings"
	"testing"

	"fieldstock-api/internal/model"
)

func TestParseRowsBasic(t *testing.T) {
	rows := [][]string{
		{"Item Name", "Qty", "Unit Price", "Category", "SKU"},
		{"Cat6 Cable 1000ft", "4", "$189.99", "cables", "CAT6-1K"},
		{"8\" Ceiling Speaker", "12", "129", "speaker", ""},
	}

	candidates, rowErrs := ParseRows(rows)
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	c := candidates[0]
	if c.Name != "Cat6 Cable 1000ft" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Quantity != 4 {
		t.Errorf("quantity = %d, want 4", c.Quantity)
	}
	if c.Price == nil || *c.Price != 189.99 {
		t.Errorf("price = %v, want 189.99", c.Price)
	}
	if c.Category != model.CategoryCables {
		t.Errorf("category = %q, want Cables", c.Category)
	}
	if c.Barcode != "CAT6-1K" {
		t.Errorf("barcode = %q", c.Barcode)
	}

	if candidates[1].Category != model.CategorySpeakers {
		t.Errorf("row 2 category = %q, want Speakers", candidates[1].Category)
	}
}

func TestParseRowsDescriptionRouting(t *testing.T) {
	// A description column becomes the name only when no name column
	// matched first.
	rows := [][]string{
		{"Description", "Qty"},
		{"HDMI Matrix 4x4", "1"},
	}
	candidates, _ := ParseRows(rows)
	if len(candidates) != 1 || candidates[0].Name != "HDMI Matrix 4x4" {
		t.Fatalf("description-as-name failed: %+v", candidates)
	}

	rows = [][]string{
		{"Product", "Description", "Qty"},
		{"WAP-540", "Ceiling access point", "6"},
	}
	candidates, _ = ParseRows(rows)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	if candidates[0].Name != "WAP-540" {
		t.Errorf("name = %q, want WAP-540", candidates[0].Name)
	}
	if candidates[0].Description != "Ceiling access point" {
		t.Errorf("description = %q", candidates[0].Description)
	}
}

func TestParseRowsSkipsAndDefaults(t *testing.T) {
	rows := [][]string{
		{"Name", "Quantity", "Price"},
		{"", "3", "10.00"},          // no name: skipped, reported
		{"Lone cell", "", ""},       // <2 non-empty cells: silently ignored
		{"Surge strip", "n/a", "?"}, // unparsable numbers default to 0
	}

	candidates, rowErrs := ParseRows(rows)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if len(rowErrs) != 1 || !strings.Contains(rowErrs[0], "row 2") {
		t.Errorf("row errors = %v, want one mentioning row 2", rowErrs)
	}

	c := candidates[0]
	if c.Name != "Surge strip" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 on parse failure", c.Quantity)
	}
	if c.Price == nil || *c.Price != 0 {
		t.Errorf("price = %v, want 0 on parse failure", c.Price)
	}
}

func TestParseRowsOrderPreserved(t *testing.T) {
	rows := [][]string{
		{"Item", "Count"},
		{"b", "1"},
		{"a", "2"},
		{"c", "3"},
	}
	candidates, _ := ParseRows(rows)
	got := make([]string, len(candidates))
	for i, c := range candidates {
		got[i] = c.Name
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestParseRowsEmptyInput(t *testing.T) {
	if c, e := ParseRows(nil); c != nil || e != nil {
		t.Errorf("ParseRows(nil) = %v, %v", c, e)
	}
	if c, e := ParseRows([][]string{{"Name", "Qty"}}); c != nil || e != nil {
		t.Errorf("headers-only input should produce nothing, got %v, %v", c, e)
	}
}

func TestParseQuantityCoercion(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12", 12},
		{"12.7", 12},
		{"1,204", 1204},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseQuantity(tt.in); got != tt.want {
			t.Errorf("parseQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
