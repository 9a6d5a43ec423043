package model

import "time"

// Item is the canonical inventory record.
//
// Invariants held by every path that produces one: Name is non-empty and
// trimmed, Quantity is a non-negative integer, and Category is a valid label
// (never raw input text).
type Item struct {
	ID                string    `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	Barcode           string    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Quantity          int       `json:"quantity" bson:"quantity"`
	Category          Category  `json:"category" bson:"category"`
	Subcategory       string    `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	UnitPrice         *float64  `json:"unit_price,omitempty" bson:"unit_price,omitempty"`
	Description       string    `json:"description,omitempty" bson:"description,omitempty"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty" bson:"low_stock_threshold,omitempty"`
	Favorite          bool      `json:"favorite,omitempty" bson:"favorite,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// Candidate is a parsed but not yet reconciled row or invoice line item.
// It exists only during an import batch and is never persisted.
type Candidate struct {
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	Category    Category `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ItemPatch describes a partial update to an existing item. Nil fields are
// left untouched by the repository.
type ItemPatch struct {
	Quantity    *int      `json:"quantity,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Barcode     *string   `json:"barcode,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Quantity == nil && p.Category == nil && p.Price == nil &&
		p.Barcode == nil && p.Description == nil
}
