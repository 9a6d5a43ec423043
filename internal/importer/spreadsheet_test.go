package importer

import (
	"errors"
	"testing"
)

func TestReadRowsCSV(t *testing.T) {
	data := []byte("Name,Qty,Price\nHDMI Cable, 5,12.99\nXLR Cable,3,\n")

	rows, err := ReadRows("stock.csv", data)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][0] != "HDMI Cable" || rows[1][1] != "5" {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Ragged rows are allowed.
	if len(rows[2]) != 3 {
		t.Errorf("row 2 has %d cells, want 3", len(rows[2]))
	}
}

func TestReadRowsRaggedCSV(t *testing.T) {
	data := []byte("Name,Qty\nProjector,2,extra cell\nScreen\n")

	rows, err := ReadRows("stock.csv", data)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
}

func TestReadRowsUnsupportedExtension(t *testing.T) {
	for _, name := range []string{"invoice.pdf", "notes.docx", "archive"} {
		_, err := ReadRows(name, []byte("data"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ReadRows(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestReadRowsBadExcelData(t *testing.T) {
	if _, err := ReadRows("stock.xlsx", []byte("not a zip archive")); err == nil {
		t.Error("expected error for corrupt xlsx data")
	}
}
