package handler

import (
	"encoding/json"
	"net/http"

	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/apierror"
	"fieldstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// TimeTrackerHandler handles time tracking HTTP requests.
type TimeTrackerHandler struct {
	timeService *service.TimeTrackerService
}

// NewTimeTrackerHandler creates a new time tracker handler.
func NewTimeTrackerHandler(timeService *service.TimeTrackerService) *TimeTrackerHandler {
	return &TimeTrackerHandler{
		timeService: timeService,
	}
}

// TimerRequest is the body for starting or stopping a timer.
type TimerRequest struct {
	Project string `json:"project"`
	Task    string `json:"task,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// StartTimer handles POST /api/v1/time/start
func (h *TimeTrackerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req TimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	entry, err := h.timeService.Start(r.Context(), req.Project, req.Task)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.Created(w, entry)
}

// StopTimer handles POST /api/v1/time/stop
func (h *TimeTrackerHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	var req TimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	entry, err := h.timeService.Stop(r.Context(), req.Project, req.Notes)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, entry)
}

// ListEntries handles GET /api/v1/time
func (h *TimeTrackerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.timeService.List(r.Context(), r.URL.Query().Get("project"))
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, entries)
}

// DeleteEntry handles DELETE /api/v1/time/{id}
func (h *TimeTrackerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.timeService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.NoContent(w)
}

// Summary handles GET /api/v1/time/summary
func (h *TimeTrackerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.timeService.Summary(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, summaries)
}
