package model

// InvoiceExtraction is the JSON shape produced by the vision model when it
// reads a photographed invoice. Consumed as-is; the reconciliation core only
// sees the line items after mapping.
type InvoiceExtraction struct {
	Vendor        string            `json:"vendor,omitempty"`
	InvoiceNumber string            `json:"invoiceNumber,omitempty"`
	Date          string            `json:"date,omitempty"`
	Subtotal      float64           `json:"subtotal,omitempty"`
	Tax           float64           `json:"tax,omitempty"`
	Total         float64           `json:"total,omitempty"`
	LineItems     []InvoiceLineItem `json:"lineItems"`
}

// InvoiceLineItem is a single extracted invoice line.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	SKU         string  `json:"sku,omitempty"`
	Category    string  `json:"category,omitempty"`
}
