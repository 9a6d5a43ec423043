package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fieldstock-api/internal/model"
)

const extractionPrompt = `You are an invoice parser for an AV equipment supplier.
Extract the following from the attached invoice document and respond with JSON only:

{
  "vendor": "supplier name",
  "invoiceNumber": "invoice number if present",
  "date": "invoice date as printed",
  "subtotal": 0,
  "tax": 0,
  "total": 0,
  "lineItems": [
    {
      "description": "item description",
      "quantity": 1,
      "unitPrice": 0,
      "totalPrice": 0,
      "sku": "part number if present",
      "category": "best-guess product category"
    }
  ]
}

Rules:
- lineItems must only contain purchasable products, never shipping, tax, or subtotal rows.
- Use null for any numeric field you cannot read.
- quantity defaults to 1 when not printed.
- Do not invent items that are not on the invoice.`

var supportedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
}

// GeminiExtractor extracts invoice data using Google's Gemini vision models.
type GeminiExtractor struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

var _ Extractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor creates an extractor backed by the given model.
// modelName defaults to gemini-2.0-flash when empty.
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.SetTemperature(0.1)
	m.ResponseMIMEType = "application/json"

	return &GeminiExtractor{
		client:    client,
		model:     m,
		modelName: modelName,
	}, nil
}

// ExtractInvoice sends the document to the model and parses the JSON reply.
func (g *GeminiExtractor) ExtractInvoice(ctx context.Context, data []byte, mimeType string) (*model.InvoiceExtraction, error) {
	if !supportedMIMETypes[mimeType] {
		return nil, ErrUnsupportedType
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini: %w", err)
	}

	raw := collectText(resp)
	if raw == "" {
		return nil, fmt.Errorf("Gemini returned an empty response")
	}

	var extraction model.InvoiceExtraction
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	if len(extraction.LineItems) == 0 {
		return nil, ErrNoLineItems
	}

	log.Printf("[AI] Extracted %d line items from %s invoice in %v (model=%s)",
		len(extraction.LineItems), mimeType, time.Since(start).Round(time.Millisecond), g.modelName)

	return &extraction, nil
}

// Close releases the underlying client.
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// cleanJSON strips markdown fences some models wrap around JSON output.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
