package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"fieldstock-api/internal/model"
)

// Header keyword sets for column routing. A header matches a set when it
// contains any keyword, so "Item Name", "Unit Price" and "Qty on hand" all
// resolve correctly regardless of column order.
var (
	nameHeaders     = []string{"name", "item", "product"}
	priceHeaders    = []string{"price", "cost", "retail"}
	quantityHeaders = []string{"quantity", "qty", "stock", "count"}
	categoryHeaders = []string{"category", "type", "class"}
	barcodeHeaders  = []string{"barcode", "sku", "upc", "code"}
)

// ParseRows converts a header-plus-data cell grid into candidate records.
//
// Row 0 is the header row. Data rows with fewer than two non-empty cells are
// ignored, and rows that yield no name are skipped; for those a per-row error
// string is returned so call sites that report them can, while the minimal
// path just drops them. Output order matches input order and nothing is
// deduplicated here.
func ParseRows(rows [][]string) ([]model.Candidate, []string) {
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var (
		candidates []model.Candidate
		rowErrors  []string
	)

	for i, row := range rows[1:] {
		if countNonEmpty(row) < 2 {
			continue
		}

		c := model.Candidate{Category: model.CategoryOther}
		for col, cell := range row {
			if col >= len(headers) {
				break
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}

			header := headers[col]
			switch {
			case containsAny(header, nameHeaders):
				if c.Name == "" {
					c.Name = value
				}
			case strings.Contains(header, "description"):
				// A description column doubles as the name column when no
				// name has been found yet.
				if c.Name == "" {
					c.Name = value
				} else if c.Description == "" {
					c.Description = value
				}
			case containsAny(header, priceHeaders):
				if c.Price == nil {
					p := parsePrice(value)
					c.Price = &p
				}
			case containsAny(header, quantityHeaders):
				c.Quantity = parseQuantity(value)
			case containsAny(header, categoryHeaders):
				c.Category = NormalizeCategory(value)
			case containsAny(header, barcodeHeaders):
				if c.Barcode == "" {
					c.Barcode = value
				}
			}
		}

		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			// Header row is row 1 in spreadsheet terms.
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: no item name found", i+2))
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, rowErrors
}

func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func containsAny(header string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(header, kw) {
			return true
		}
	}
	return false
}

// parsePrice extracts a non-negative float from text like "$1,299.00".
// Unparsable input defaults to 0 rather than failing the row.
func parsePrice(s string) float64 {
	cleaned := stripNonNumeric(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseQuantity extracts a non-negative integer, truncating decimals.
func parseQuantity(s string) int {
	cleaned := stripNonNumeric(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(v)
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
