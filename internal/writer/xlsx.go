package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// SheetName is the worksheet that holds exported transactions.
const SheetName = "Transactions"

// XLSXWriter writes transactions to a workbook with numeric amount cells.
type XLSXWriter struct{}

// WriteToFile writes transactions to an XLSX file at the given path.
func (w *XLSXWriter) WriteToFile(path string, txns []models.LabeledRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, txns); err != nil {
		return err
	}
	return f.Close()
}

// Write encodes the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, txns []models.LabeledRecord) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := book.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	for i, t := range txns {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{formatDate(t), t.Description, number(t.Debit), number(t.Credit), number(t.Balance), t.Category}
		if err := book.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write XLSX row %d: %w", i+1, err)
		}
	}

	if err := book.Write(out); err != nil {
		return fmt.Errorf("failed to encode XLSX: %w", err)
	}
	return nil
}

// number returns v for a numeric cell, or an empty string for a blank one.
func number(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
