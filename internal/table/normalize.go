package table

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

const (
	currencyToken = "$"
	creditToken   = "CR"
)

// NormalizeCells runs MergeDollarCR followed by StripTokens. The order
// matters: stripping first would remove the markers the merge looks for.
func NormalizeCells(t models.Table) models.Table {
	return StripTokens(MergeDollarCR(t))
}

// MergeDollarCR repairs amounts whose "$" ended up in one cell and whose
// trailing "CR" marker ended up in the next one. The part of the left cell
// from the first "$" onwards is moved in front of the right cell.
func MergeDollarCR(t models.Table) models.Table {
	out := make(models.Table, len(t))
	for r, row := range t {
		cells := make(models.Row, len(row))
		copy(cells, row)

		for i := 0; i+1 < len(cells); i++ {
			cell, right := cells[i], cells[i+1]
			if !strings.Contains(cell, currencyToken) || !strings.Contains(right, creditToken) {
				continue
			}
			left, rest, _ := strings.Cut(cell, currencyToken)
			cells[i+1] = strings.TrimSpace(currencyToken + rest + right)
			cells[i] = strings.TrimSpace(left)
		}
		out[r] = cells
	}
	return out
}

// StripTokens removes every "$" and "CR" substring from every cell and trims
// the result.
func StripTokens(t models.Table) models.Table {
	out := make(models.Table, len(t))
	for r, row := range t {
		cells := make(models.Row, len(row))
		for i, cell := range row {
			cell = strings.ReplaceAll(cell, currencyToken, "")
			cell = strings.ReplaceAll(cell, creditToken, "")
			cells[i] = strings.TrimSpace(cell)
		}
		out[r] = cells
	}
	return out
}
