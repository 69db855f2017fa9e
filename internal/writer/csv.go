// Package writer exports classified transactions as CSV or XLSX.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// DateLayout is the date format used in exported files.
const DateLayout = "2006-01-02"

// Columns are the exported column headers, in order.
var Columns = []string{"Date", "Transaction Description", "Debit", "Credit", "Balance", "Category"}

// Row is one exported transaction line.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Transaction Description"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
	Balance     string `csv:"Balance"`
	Category    string `csv:"Category"`
}

// Rows converts transactions to their exported text form. Absent values
// become empty fields.
func Rows(txns []models.LabeledRecord) []Row {
	out := make([]Row, len(txns))
	for i, t := range txns {
		out[i] = Row{
			Date:        formatDate(t),
			Description: t.Description,
			Debit:       formatAmount(t.Debit),
			Credit:      formatAmount(t.Credit),
			Balance:     formatAmount(t.Balance),
			Category:    t.Category,
		}
	}
	return out
}

// CSVWriter writes transactions in CSV format.
type CSVWriter struct {
	// IncludeSource adds a "# Source" comment line naming the statement.
	IncludeSource bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path, source string, txns []models.LabeledRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, source, txns); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the header row and one row per transaction to out.
func (w *CSVWriter) Write(out io.Writer, source string, txns []models.LabeledRecord) error {
	cw := gocsv.NewSafeCSVWriter(csv.NewWriter(out))

	if w.IncludeSource && source != "" {
		if err := cw.Write([]string{"# Source", source}); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	rows := Rows(txns)
	if err := gocsv.MarshalCSV(&rows, cw); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t models.LabeledRecord) string {
	if t.Date == nil {
		return ""
	}
	return t.Date.Format(DateLayout)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
