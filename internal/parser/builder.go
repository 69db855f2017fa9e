package parser

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// BuildRecords infers one record per cleaned row, in row order.
//
// The rightmost amount on a row is its balance. Debit and credit come from
// the change against the last balance seen on an earlier row, carried as a
// running value through the fold. The first balanced row has nothing to
// compare against: if it carries a second amount that amount is taken as a
// credit, otherwise neither side is set.
func BuildRecords(t models.Table) []models.Record {
	records := make([]models.Record, len(t))
	var lastBalance *float64
	for i, row := range t {
		records[i] = buildRecord(row, lastBalance)
		if records[i].Balance != nil {
			lastBalance = records[i].Balance
		}
	}
	return records
}

func buildRecord(row models.Row, lastBalance *float64) models.Record {
	var rec models.Record

	dateCol := -1
	var amounts []models.NumericToken
	for i, cell := range row {
		if dateCol < 0 && !strings.Contains(cell, ".") {
			if d, err := ParseDate(cell); err == nil {
				rec.Date = &d
				dateCol = i
			}
		}
		if v, err := ParseAmount(cell); err == nil {
			amounts = append(amounts, models.NumericToken{Column: i, Value: v})
		}
	}

	if len(amounts) == 0 {
		return rec
	}

	balance := amounts[len(amounts)-1]
	rec.Balance = models.Float(balance.Value)
	endCol := balance.Column

	if len(amounts) > 1 {
		amount := amounts[len(amounts)-2]
		endCol = amount.Column
		if lastBalance == nil {
			rec.Credit = models.Float(amount.Value)
		}
	}

	// The explicit amount is ignored in favour of the balance delta.
	if lastBalance != nil {
		if balance.Value < *lastBalance {
			rec.Debit = models.Float(*lastBalance - balance.Value)
		} else {
			rec.Credit = models.Float(balance.Value - *lastBalance)
		}
	}

	rec.Description = describe(row, dateCol, endCol)
	return rec
}

// describe joins the cells that sit between the date and the first amount
// used by the record. Without a date everything left of that amount counts.
func describe(row models.Row, dateCol, endCol int) string {
	if dateCol < 0 {
		return joinCells(row[:endCol], false)
	}
	if dateCol >= endCol {
		return ""
	}
	return joinCells(row[dateCol+1:endCol], true)
}

func joinCells(cells []string, skipDates bool) string {
	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if skipDates {
			if _, err := ParseDate(cell); err == nil {
				continue
			}
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}
