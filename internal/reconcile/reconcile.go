package reconcile

import (
	"strings"

	"fieldstock-api/internal/model"
)

// Update pairs an existing item ID with the patch to apply to it.
type Update struct {
	ID    string          `json:"id"`
	Patch model.ItemPatch `json:"patch"`
}

// Plan is the outcome of reconciling candidates against the current list.
// Every candidate lands in exactly one bucket; reconciliation has no reject
// path.
type Plan struct {
	ToInsert []model.Candidate `json:"to_insert"`
	ToUpdate []Update          `json:"to_update"`
}

// Reconcile folds candidates into the existing item list.
//
// Each candidate is linked to the first existing item with the same
// normalized name, never the "best" one. On a match the patch:
//   - overwrites the price when the candidate carries one;
//   - fills barcode and description only when the existing item lacks them;
//   - overwrites the category only when the candidate's is not Other;
//   - sets quantity to 0 when resetQuantities, and otherwise leaves the
//     existing quantity alone (the candidate's quantity is discarded — an
//     import never adds stock onto an existing item).
//
// Unmatched candidates become inserts, with quantity forced to 0 under
// resetQuantities. Candidates are processed in input order and each affects
// at most one existing item.
func Reconcile(existing []model.Item, candidates []model.Candidate, resetQuantities bool) Plan {
	var plan Plan

	for _, cand := range candidates {
		key := NormalizeName(cand.Name)

		matched := false
		for i := range existing {
			if NormalizeName(existing[i].Name) != key {
				continue
			}
			matched = true

			var patch model.ItemPatch
			if cand.Price != nil {
				price := *cand.Price
				patch.Price = &price
			}
			if existing[i].Barcode == "" && cand.Barcode != "" {
				barcode := cand.Barcode
				patch.Barcode = &barcode
			}
			if existing[i].Description == "" && cand.Description != "" {
				desc := cand.Description
				patch.Description = &desc
			}
			if cand.Category != model.CategoryOther {
				category := cand.Category
				patch.Category = &category
			}
			if resetQuantities {
				zero := 0
				patch.Quantity = &zero
			}

			plan.ToUpdate = append(plan.ToUpdate, Update{ID: existing[i].ID, Patch: patch})
			break
		}

		if !matched {
			if resetQuantities {
				cand.Quantity = 0
			}
			plan.ToInsert = append(plan.ToInsert, cand)
		}
	}

	return plan
}

// CandidatesFromInvoice maps extracted invoice line items to candidates.
// Lines without a description are dropped; quantities truncate to
// non-negative integers; the unit price falls back to totalPrice/quantity
// when the vision model only filled the line total.
func CandidatesFromInvoice(inv *model.InvoiceExtraction) []model.Candidate {
	if inv == nil {
		return nil
	}

	var out []model.Candidate
	for _, line := range inv.LineItems {
		name := strings.TrimSpace(line.Description)
		if name == "" {
			continue
		}

		qty := int(line.Quantity)
		if qty < 0 {
			qty = 0
		}

		// Vision models often leave the category blank but put the product
		// type in the description, so fall back to classifying the name.
		category := NormalizeCategory(line.Category)
		if category == model.CategoryOther {
			category = NormalizeCategory(name)
		}

		c := model.Candidate{
			Name:     name,
			Quantity: qty,
			Category: category,
			Barcode:  strings.TrimSpace(line.SKU),
		}

		switch {
		case line.UnitPrice > 0:
			price := line.UnitPrice
			c.Price = &price
		case line.TotalPrice > 0 && qty > 0:
			price := line.TotalPrice / float64(qty)
			c.Price = &price
		}

		out = append(out, c)
	}
	return out
}

