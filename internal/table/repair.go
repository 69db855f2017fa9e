package table

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// DefaultDescriptionColumn is where extracted statements keep the description.
const DefaultDescriptionColumn = 1

// RepairResult reports what RepairDescriptions changed.
type RepairResult struct {
	Table   models.Table
	Fixed   int // rows that received a redistributed description
	Dropped int // overflow groups that had no empty row to go to
}

// RepairDescriptions undoes an extraction artifact where the descriptions of
// several consecutive transactions land in a single cell, separated by line
// breaks, and the following rows are left with an empty description.
//
// A description cell with more than two newlines is split into groups that
// each end right after their second newline. The first group stays in place
// and the rest are written, in order, into the empty description cells of
// the rows that follow. Groups beyond the number of empty rows are dropped.
func RepairDescriptions(t models.Table, col int) RepairResult {
	res := RepairResult{Table: make(models.Table, len(t))}
	for i, row := range t {
		r := make(models.Row, len(row))
		copy(r, row)
		res.Table[i] = r
	}
	rows := res.Table

	for i := 0; i < len(rows); {
		cell := strings.TrimSpace(cellAt(rows[i], col))
		if strings.Count(cell, "\n") <= 2 {
			i++
			continue
		}

		j := i + 1
		for j < len(rows) && strings.TrimSpace(cellAt(rows[j], col)) == "" {
			j++
		}
		numToFix := j - i - 1

		groups := splitEverySecondNewline(cell)
		setCell(&rows[i], col, groups[0])
		for k := 1; k <= numToFix && k < len(groups); k++ {
			setCell(&rows[i+k], col, groups[k])
			res.Fixed++
		}
		if extra := len(groups) - 1 - numToFix; extra > 0 {
			res.Dropped += extra
		}

		i = j
	}
	return res
}

func splitEverySecondNewline(s string) []string {
	var groups []string
	var b strings.Builder
	newlines := 0
	for _, ch := range s {
		b.WriteRune(ch)
		if ch != '\n' {
			continue
		}
		newlines++
		if newlines == 2 {
			groups = append(groups, b.String())
			b.Reset()
			newlines = 0
		}
	}
	if b.Len() > 0 {
		groups = append(groups, b.String())
	}
	return groups
}

func cellAt(row models.Row, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func setCell(row *models.Row, col int, v string) {
	for len(*row) <= col {
		*row = append(*row, "")
	}
	(*row)[col] = v
}
