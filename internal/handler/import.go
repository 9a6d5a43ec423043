package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"fieldstock-api/internal/ai"
	"fieldstock-api/internal/importer"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/apierror"
	"fieldstock-api/pkg/response"
)

// ImportHandler handles file and invoice import uploads.
type ImportHandler struct {
	importService *service.ImportService
	maxFileSize   int64
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importService *service.ImportService, maxFileSize int64) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &ImportHandler{
		importService: importService,
		maxFileSize:   maxFileSize,
	}
}

// readUpload pulls the "file" part out of a multipart form.
func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		response.Error(w, apierror.PayloadTooLarge(""))
		return "", "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apierror.BadRequest("multipart field 'file' is required"))
		return "", "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read uploaded file"))
		return "", "", nil, false
	}

	return header.Filename, header.Header.Get("Content-Type"), data, true
}

func resetFlag(r *http.Request) bool {
	v := r.FormValue("reset_quantities")
	if v == "" {
		v = r.URL.Query().Get("reset_quantities")
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func mapImportError(err error) error {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, ai.ErrUnsupportedType):
		return apierror.UnsupportedMedia(err.Error())
	case errors.Is(err, ai.ErrMissingAPIKey):
		return apierror.ServiceUnavailable(err.Error())
	case errors.Is(err, ai.ErrNoLineItems):
		return apierror.BadRequest(err.Error())
	default:
		return err
	}
}

// ImportFile handles POST /api/v1/import/file
func (h *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	filename, _, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	report, err := h.importService.ImportFile(r.Context(), filename, data, resetFlag(r))
	if err != nil {
		response.Error(w, mapImportError(err))
		return
	}

	response.OK(w, report)
}

// ImportInvoice handles POST /api/v1/import/invoice
func (h *ImportHandler) ImportInvoice(w http.ResponseWriter, r *http.Request) {
	filename, contentType, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	report, err := h.importService.ImportInvoice(r.Context(), filename, data, contentType, resetFlag(r))
	if err != nil {
		response.Error(w, mapImportError(err))
		return
	}

	response.OK(w, report)
}

// ListImportLogs handles GET /api/v1/import/logs
func (h *ImportHandler) ListImportLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	logs, total, err := h.importService.ImportLogs(r.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, logs, page, limit, total)
}
