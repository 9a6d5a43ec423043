package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/reconcile"
	"fieldstock-api/internal/repository"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/apierror"
	"fieldstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// InventoryHandler handles item-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// mapServiceError translates service and repository errors into API errors.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("")
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyMergeGroup),
		errors.Is(err, reconcile.ErrKeeperNotInGroup),
		errors.Is(err, service.ErrProjectRequired),
		errors.Is(err, service.ErrVaultFieldsRequired):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, service.ErrTimerRunning):
		return apierror.Conflict(err.Error())
	case errors.Is(err, service.ErrTimerNotRunning):
		return apierror.NotFound(err.Error())
	default:
		return err
	}
}

// ListItems handles GET /api/v1/items
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		items []model.Item
		err   error
	)
	if query != "" {
		items, err = h.inventoryService.SearchItems(r.Context(), query)
	} else {
		items, err = h.inventoryService.ListItems(r.Context())
	}
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, items)
}

// GetItem handles GET /api/v1/items/{id}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.inventoryService.GetItem(r.Context(), id)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, item)
}

// GetItemByBarcode handles GET /api/v1/items/barcode/{code}
func (h *InventoryHandler) GetItemByBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.Error(w, apierror.BadRequest("barcode is required"))
		return
	}

	item, err := h.inventoryService.FindByBarcode(r.Context(), code)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, item)
}

// CreateItem handles POST /api/v1/items
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := h.inventoryService.CreateItem(r.Context(), &item); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.Created(w, item)
}

// UpdateItem handles PUT /api/v1/items/{id}
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()
	item.ID = id

	if err := h.inventoryService.UpdateItem(r.Context(), &item); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, item)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inventoryService.DeleteItem(r.Context(), id); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.NoContent(w)
}

// AdjustRequest is the body for quantity adjustments.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// AdjustQuantity handles POST /api/v1/items/{id}/adjust
func (h *InventoryHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	item, err := h.inventoryService.AdjustQuantity(r.Context(), id, req.Delta)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, item)
}

// SyncItem handles POST /api/v1/items/sync
func (h *InventoryHandler) SyncItem(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	stored, err := h.inventoryService.SyncItem(r.Context(), item)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, map[string]string{"status": "synced", "id": stored.ID})
}

// ListDuplicates handles GET /api/v1/items/duplicates
func (h *InventoryHandler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.inventoryService.FindDuplicates(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, groups)
}

// MergeRequest is the body for a manual merge.
type MergeRequest struct {
	ItemIDs  []string `json:"item_ids"`
	KeeperID string   `json:"keeper_id"`
}

// MergeItems handles POST /api/v1/items/merge
func (h *InventoryHandler) MergeItems(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.KeeperID == "" {
		response.Error(w, apierror.BadRequest("keeper_id is required"))
		return
	}

	result, err := h.inventoryService.MergeGroup(r.Context(), req.ItemIDs, req.KeeperID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, result)
}

// MergeAll handles POST /api/v1/items/merge-all
func (h *InventoryHandler) MergeAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.inventoryService.MergeAll(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"merged_groups": len(results),
		"results":       results,
	})
}

// ListCategories handles GET /api/v1/categories
func (h *InventoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	response.OK(w, model.Categories())
}
