// Package ai extracts structured invoice data from uploaded documents
// using a vision-capable language model.
package ai

import (
	"context"
	"errors"

	"fieldstock-api/internal/model"
)

var (
	// ErrMissingAPIKey indicates no model API key is configured.
	ErrMissingAPIKey = errors.New("AI extraction is not configured: missing API key")

	// ErrUnsupportedType indicates the uploaded document type cannot be
	// sent to the model.
	ErrUnsupportedType = errors.New("unsupported document type for invoice extraction")

	// ErrNoLineItems indicates the model found no purchasable items in
	// the document.
	ErrNoLineItems = errors.New("no line items could be extracted from the document")
)

// Extractor turns an invoice document into structured data.
type Extractor interface {
	ExtractInvoice(ctx context.Context, data []byte, mimeType string) (*model.InvoiceExtraction, error)
}
