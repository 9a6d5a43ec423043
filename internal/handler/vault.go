package handler

import (
	"encoding/json"
	"net/http"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/apierror"
	"fieldstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// VaultHandler handles credential vault HTTP requests.
type VaultHandler struct {
	vaultService *service.VaultService
}

// NewVaultHandler creates a new vault handler.
func NewVaultHandler(vaultService *service.VaultService) *VaultHandler {
	return &VaultHandler{
		vaultService: vaultService,
	}
}

// ListEntries handles GET /api/v1/vault
func (h *VaultHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.vaultService.List(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, entries)
}

// GetEntry handles GET /api/v1/vault/{id}
func (h *VaultHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.vaultService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, entry)
}

// CreateEntry handles POST /api/v1/vault
func (h *VaultHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.VaultEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := h.vaultService.Create(r.Context(), &entry); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.Created(w, entry)
}

// UpdateEntry handles PUT /api/v1/vault/{id}
func (h *VaultHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.VaultEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()
	entry.ID = chi.URLParam(r, "id")

	if err := h.vaultService.Update(r.Context(), &entry); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, entry)
}

// DeleteEntry handles DELETE /api/v1/vault/{id}
func (h *VaultHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.vaultService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.NoContent(w)
}
