package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldstock-api/internal/ai"
	"fieldstock-api/internal/model"
)

func newTestImport(t *testing.T, extractor ai.Extractor, seed ...model.Item) (*ImportService, *fakeItemRepo, *fakeLogRepo) {
	t.Helper()
	repo := &fakeItemRepo{items: seed}
	logs := &fakeLogRepo{}
	svc := NewImportService(repo, logs, extractor, nil)
	if svc == nil {
		t.Fatal("NewImportService returned nil")
	}
	return svc, repo, logs
}

func TestImportFileCSV(t *testing.T) {
	svc, repo, logs := newTestImport(t, nil,
		model.Item{ID: "a", Name: "Cat6 Cable", Quantity: 10, Category: model.CategoryCables},
	)
	ctx := context.Background()

	csv := []byte("Item,Qty,Price,SKU\n" +
		"cat6 cable,25,0.45,CBL-100\n" +
		"Wall Mount,4,19.99,\n" +
		",5,1.00,\n")

	report, err := svc.ImportFile(ctx, "stocklist.csv", csv, false)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if report.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", report.Inserted)
	}
	if report.Updated != 1 {
		t.Errorf("updated = %d, want 1", report.Updated)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (nameless row)", report.Skipped)
	}
	if len(report.RowErrors) != 1 {
		t.Errorf("row errors = %v, want 1", report.RowErrors)
	}

	// Matched row must not add stock; it only patches missing fields.
	existing, _ := repo.Get(ctx, "a")
	if existing.Quantity != 10 {
		t.Errorf("existing quantity = %d, want untouched 10", existing.Quantity)
	}
	if existing.Barcode != "CBL-100" {
		t.Errorf("barcode = %q, want filled from import", existing.Barcode)
	}
	if existing.UnitPrice == nil || *existing.UnitPrice != 0.45 {
		t.Errorf("unit price = %v, want 0.45", existing.UnitPrice)
	}

	items, _ := repo.List(ctx)
	if len(items) != 2 {
		t.Errorf("%d items after import, want 2", len(items))
	}

	if len(logs.logs) != 1 {
		t.Fatalf("%d import logs, want 1", len(logs.logs))
	}
	if logs.logs[0].Source != model.ImportSourceCSV {
		t.Errorf("log source = %q, want csv", logs.logs[0].Source)
	}
}

func TestImportFileResetQuantities(t *testing.T) {
	svc, repo, _ := newTestImport(t, nil,
		model.Item{ID: "a", Name: "HDMI Cable", Quantity: 8, Category: model.CategoryCables},
	)
	ctx := context.Background()

	csv := []byte("Item,Qty\nHDMI Cable,3\nNew Thing,6\n")
	report, err := svc.ImportFile(ctx, "count.csv", csv, true)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if report.Updated != 1 || report.Inserted != 1 {
		t.Errorf("report = %+v", report)
	}

	existing, _ := repo.Get(ctx, "a")
	if existing.Quantity != 0 {
		t.Errorf("existing quantity = %d, want reset to 0", existing.Quantity)
	}

	items, _ := repo.List(ctx)
	for _, item := range items {
		if item.Name == "New Thing" && item.Quantity != 0 {
			t.Errorf("new item quantity = %d, want 0 under reset", item.Quantity)
		}
	}
}

func TestImportFileUnsupported(t *testing.T) {
	svc, _, _ := newTestImport(t, nil)

	if _, err := svc.ImportFile(context.Background(), "notes.pdf", []byte("x"), false); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := svc.ImportFile(context.Background(), "empty.csv", []byte("Name,Qty\n"), false); err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestImportInvoice(t *testing.T) {
	extractor := &fakeExtractor{extraction: &model.InvoiceExtraction{
		Vendor: "AV Distributors Inc",
		LineItems: []model.InvoiceLineItem{
			{Description: "In-Ceiling Speaker", Quantity: 6, UnitPrice: 89.00, SKU: "SPK-6"},
			{Description: "", Quantity: 1},
		},
	}}
	svc, repo, logs := newTestImport(t, extractor)
	ctx := context.Background()

	report, err := svc.ImportInvoice(ctx, "invoice.jpg", []byte("jpeg"), "image/jpeg", false)
	if err != nil {
		t.Fatalf("ImportInvoice: %v", err)
	}
	if report.Vendor != "AV Distributors Inc" {
		t.Errorf("vendor = %q", report.Vendor)
	}
	if report.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", report.Inserted)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (blank description line)", report.Skipped)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 {
		t.Fatalf("%d items, want 1", len(items))
	}
	if items[0].Category != model.CategorySpeakers {
		t.Errorf("category = %q, want Speakers", items[0].Category)
	}
	if items[0].Barcode != "SPK-6" {
		t.Errorf("barcode = %q, want SKU carried over", items[0].Barcode)
	}

	if len(logs.logs) != 1 || logs.logs[0].Source != model.ImportSourceInvoice {
		t.Errorf("import log = %+v", logs.logs)
	}
}

func TestImportInvoiceExtractorErrors(t *testing.T) {
	svc, _, _ := newTestImport(t, &fakeExtractor{err: ai.ErrNoLineItems})
	if _, err := svc.ImportInvoice(context.Background(), "inv.png", []byte("x"), "image/png", false); !errors.Is(err, ai.ErrNoLineItems) {
		t.Errorf("error = %v, want ErrNoLineItems", err)
	}

	svc, _, _ = newTestImport(t, nil)
	if _, err := svc.ImportInvoice(context.Background(), "inv.png", []byte("x"), "image/png", false); !errors.Is(err, ai.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestCleanupSchedulerRunNow(t *testing.T) {
	logs := &fakeLogRepo{logs: []model.ImportLog{
		{ID: "old", CreatedAt: time.Now().Add(-100 * 24 * time.Hour)},
		{ID: "new", CreatedAt: time.Now()},
	}}

	sched := NewCleanupScheduler(logs, DefaultCleanupConfig())
	deleted, err := sched.RunNow()
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if len(logs.logs) != 1 || logs.logs[0].ID != "new" {
		t.Errorf("remaining logs = %+v", logs.logs)
	}
}
