package model

import "time"

// Import sources recorded in the audit log.
const (
	ImportSourceSpreadsheet = "spreadsheet"
	ImportSourceCSV         = "csv"
	ImportSourceInvoice     = "invoice"
	ImportSourceMerge       = "merge"
)

// ImportLog is an audit record of one import or merge batch.
type ImportLog struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Source          string    `json:"source" bson:"source"`
	Filename        string    `json:"filename,omitempty" bson:"filename,omitempty"`
	Vendor          string    `json:"vendor,omitempty" bson:"vendor,omitempty"`
	RowsParsed      int       `json:"rows_parsed" bson:"rows_parsed"`
	Inserted        int       `json:"inserted" bson:"inserted"`
	Updated         int       `json:"updated" bson:"updated"`
	Skipped         int       `json:"skipped" bson:"skipped"`
	ResetQuantities bool      `json:"reset_quantities" bson:"reset_quantities"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}
