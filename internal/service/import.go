package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fieldstock-api/internal/ai"
	"fieldstock-api/internal/importer"
	"fieldstock-api/internal/model"
	"fieldstock-api/internal/reconcile"
	"fieldstock-api/internal/repository"
	"fieldstock-api/pkg/uid"
)

// ImportReport summarizes one import batch for the client.
type ImportReport struct {
	Source     string   `json:"source"`
	Filename   string   `json:"filename,omitempty"`
	Vendor     string   `json:"vendor,omitempty"`
	RowsParsed int      `json:"rows_parsed"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	RowErrors  []string `json:"row_errors,omitempty"`
}

// ImportService runs the reconciliation pipeline for uploaded files and
// invoice photos. Batches are serialized so two concurrent imports cannot
// interleave their read-reconcile-write cycles.
type ImportService struct {
	repo      repository.ItemRepository
	logRepo   repository.ImportLogRepository
	extractor ai.Extractor
	inventory *InventoryService

	mu sync.Mutex
}

// NewImportService creates a new import service. extractor may be nil when
// AI extraction is not configured; invoice imports then fail with a clear
// error.
func NewImportService(repo repository.ItemRepository, logRepo repository.ImportLogRepository, extractor ai.Extractor, inventory *InventoryService) *ImportService {
	if repo == nil {
		return nil
	}
	return &ImportService{
		repo:      repo,
		logRepo:   logRepo,
		extractor: extractor,
		inventory: inventory,
	}
}

// ImportFile parses a spreadsheet or CSV upload and folds it into the
// inventory.
func (s *ImportService) ImportFile(ctx context.Context, filename string, data []byte, resetQuantities bool) (*ImportReport, error) {
	rows, err := importer.ReadRows(filename, data)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file contains no data rows")
	}

	candidates, rowErrors := reconcile.ParseRows(rows)

	source := model.ImportSourceSpreadsheet
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		source = model.ImportSourceCSV
	}

	report, err := s.applyCandidates(ctx, candidates, resetQuantities, &model.ImportLog{
		Source:   source,
		Filename: filename,
	})
	if err != nil {
		return nil, err
	}

	report.Filename = filename
	report.RowErrors = rowErrors
	report.Skipped += len(rowErrors)
	return report, nil
}

// ImportInvoice extracts line items from an invoice document and folds them
// into the inventory.
func (s *ImportService) ImportInvoice(ctx context.Context, filename string, data []byte, mimeType string, resetQuantities bool) (*ImportReport, error) {
	if s.extractor == nil {
		return nil, ai.ErrMissingAPIKey
	}

	extraction, err := s.extractor.ExtractInvoice(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	candidates := reconcile.CandidatesFromInvoice(extraction)
	if len(candidates) == 0 {
		return nil, ai.ErrNoLineItems
	}

	report, err := s.applyCandidates(ctx, candidates, resetQuantities, &model.ImportLog{
		Source:   model.ImportSourceInvoice,
		Filename: filename,
		Vendor:   extraction.Vendor,
	})
	if err != nil {
		return nil, err
	}

	report.Filename = filename
	report.Vendor = extraction.Vendor
	report.Skipped += len(extraction.LineItems) - len(candidates)
	return report, nil
}

// applyCandidates runs one reconcile batch under the import lock.
func (s *ImportService) applyCandidates(ctx context.Context, candidates []model.Candidate, resetQuantities bool, logEntry *model.ImportLog) (*ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	plan := reconcile.Reconcile(existing, candidates, resetQuantities)

	now := time.Now()
	if len(plan.ToInsert) > 0 {
		inserts := make([]model.Item, 0, len(plan.ToInsert))
		for _, cand := range plan.ToInsert {
			inserts = append(inserts, model.Item{
				ID:          uid.New(),
				Name:        cand.Name,
				Barcode:     cand.Barcode,
				Quantity:    cand.Quantity,
				Category:    cand.Category,
				UnitPrice:   cand.Price,
				Description: cand.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if err := s.repo.BatchUpsert(ctx, inserts); err != nil {
			return nil, fmt.Errorf("failed to insert new items: %w", err)
		}
	}

	updated := 0
	for _, upd := range plan.ToUpdate {
		if upd.Patch.Empty() {
			continue
		}
		item, err := s.repo.Get(ctx, upd.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load item %s for update: %w", upd.ID, err)
		}
		applyPatch(item, upd.Patch)
		item.UpdatedAt = now
		if err := s.repo.Update(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update item %s: %w", upd.ID, err)
		}
		updated++
	}

	if s.inventory != nil {
		s.inventory.invalidateList(ctx)
	}

	report := &ImportReport{
		Source:     logEntry.Source,
		RowsParsed: len(candidates),
		Inserted:   len(plan.ToInsert),
		Updated:    updated,
	}

	logEntry.ID = uid.New()
	logEntry.RowsParsed = len(candidates)
	logEntry.Inserted = report.Inserted
	logEntry.Updated = report.Updated
	logEntry.ResetQuantities = resetQuantities
	logEntry.CreatedAt = now
	if s.logRepo != nil {
		if err := s.logRepo.Insert(ctx, logEntry); err != nil {
			log.Printf("[ImportService] Failed to record import log: %v", err)
		}
	}

	log.Printf("[ImportService] %s import: %d candidates, %d inserted, %d updated (reset=%v)",
		logEntry.Source, len(candidates), report.Inserted, report.Updated, resetQuantities)
	return report, nil
}

func applyPatch(item *model.Item, patch model.ItemPatch) {
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Price != nil {
		item.UnitPrice = patch.Price
	}
	if patch.Barcode != nil {
		item.Barcode = *patch.Barcode
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
}

// ImportLogs returns the audit trail, newest first.
func (s *ImportService) ImportLogs(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	if s.logRepo == nil {
		return []model.ImportLog{}, 0, nil
	}
	return s.logRepo.List(ctx, limit, offset)
}
