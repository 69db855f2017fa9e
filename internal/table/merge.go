// Package table repairs the raw rows produced by a PDF extractor before any
// transaction fields are inferred from them.
package table

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// MergeRows folds continuation rows into the row before them.
//
// A row with exactly one non-blank cell is treated as the tail of the last
// emitted row: its text is appended to the same column of that row and the
// row itself is not emitted. Blank rows are dropped, as is a continuation
// row that has nothing before it. Every other row is emitted with its cells
// trimmed. Absent cells become empty strings.
func MergeRows(rows []models.RawRow) models.Table {
	merged := make(models.Table, 0, len(rows))

	for _, raw := range rows {
		row := resolve(raw)

		nonEmpty := 0
		col := -1
		for i, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
				col = i
			}
		}

		switch {
		case nonEmpty == 0:
			continue
		case nonEmpty == 1:
			if len(merged) == 0 {
				continue
			}
			prev := merged[len(merged)-1]
			for len(prev) <= col {
				prev = append(prev, "")
			}
			prevContent := strings.TrimSpace(prev[col])
			if prevContent != "" {
				prevContent += " "
			}
			prev[col] = prevContent + strings.TrimSpace(row[col])
			merged[len(merged)-1] = prev
		default:
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
			merged = append(merged, row)
		}
	}

	return merged
}

func resolve(raw models.RawRow) models.Row {
	row := make(models.Row, len(raw))
	for i, cell := range raw {
		if cell != nil {
			row[i] = *cell
		}
	}
	return row
}
