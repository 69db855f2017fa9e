package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// DefaultEmptyThreshold is the empty-cell fraction at which a column is dropped.
const DefaultEmptyThreshold = 0.9

// ErrInvalidInput is returned when a stage needs at least one row and gets none.
var ErrInvalidInput = errors.New("table: invalid input")

// PruneColumns pads every row to the widest row and drops each column whose
// fraction of blank cells is at least emptyThreshold. Row order and the
// relative order of surviving columns are preserved.
func PruneColumns(t models.Table, emptyThreshold float64) (models.Table, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: cannot prune columns of an empty table", ErrInvalidInput)
	}

	width := 0
	for _, row := range t {
		if len(row) > width {
			width = len(row)
		}
	}

	padded := make(models.Table, len(t))
	for i, row := range t {
		p := make(models.Row, width)
		copy(p, row)
		padded[i] = p
	}

	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		empty := 0
		for _, row := range padded {
			if strings.TrimSpace(row[col]) == "" {
				empty++
			}
		}
		if float64(empty)/float64(len(padded)) < emptyThreshold {
			keep = append(keep, col)
		}
	}

	out := make(models.Table, len(padded))
	for i, row := range padded {
		r := make(models.Row, len(keep))
		for j, col := range keep {
			r[j] = row[col]
		}
		out[i] = r
	}
	return out, nil
}
