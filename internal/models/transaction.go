package models

import "time"

// RawRow is one row as produced by the PDF extractor. A nil cell is absent,
// which is different from an empty string.
type RawRow []*string

// Row is a row whose cells have all been resolved to strings.
type Row []string

// Table is an ordered sequence of rows. Row order is statement order.
type Table []Row

// NumericToken is a cell that parsed as an amount, with the column it came from.
type NumericToken struct {
	Column int
	Value  float64
}

// Record is one reconstructed statement transaction.
type Record struct {
	Date        *time.Time `json:"Date"`
	Description string     `json:"Transaction Description"`
	Debit       *float64   `json:"Debit"`
	Credit      *float64   `json:"Credit"`
	Balance     *float64   `json:"Balance"`
}

// LabeledRecord is a Record after classification.
type LabeledRecord struct {
	Record
	Category string `json:"Category"`
	Cluster  int    `json:"-"` // transient, only meaningful inside a classifier
}

// NewRawRow builds a RawRow from plain strings. Handy for tests and for
// extractors that never produce absent cells.
func NewRawRow(cells ...string) RawRow {
	row := make(RawRow, len(cells))
	for i := range cells {
		c := cells[i]
		row[i] = &c
	}
	return row
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
