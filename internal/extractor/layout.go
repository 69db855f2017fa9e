package extractor

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Glyph is one positioned piece of text on a page. PDF coordinates grow
// upwards, so a larger Y is higher on the page.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// Cell is a run of glyphs on one physical row with no wide gap inside it.
type Cell struct {
	X    float64
	End  float64
	Text string
}

// wordSpaceRatio is the gap, relative to the font size, above which two
// glyphs inside a cell are separated by a space.
const wordSpaceRatio = 0.15

// GroupRows groups glyphs into physical rows, top to bottom. A glyph joins
// the current row when its baseline is within yTolerance of the first glyph
// of that row.
func GroupRows(glyphs []Glyph, yTolerance float64) [][]Glyph {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Glyph
	current := []Glyph{sorted[0]}
	for _, g := range sorted[1:] {
		if math.Abs(g.Y-current[0].Y) <= yTolerance {
			current = append(current, g)
			continue
		}
		rows = append(rows, current)
		current = []Glyph{g}
	}
	return append(rows, current)
}

// MergeCells orders a row's glyphs left to right and merges them into cells.
// A horizontal gap of at least xGap starts a new cell.
func MergeCells(row []Glyph, xGap float64) []Cell {
	if len(row) == 0 {
		return nil
	}
	glyphs := make([]Glyph, len(row))
	copy(glyphs, row)
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var cells []Cell
	var b strings.Builder
	cell := Cell{X: glyphs[0].X, End: glyphs[0].X + glyphs[0].W}
	b.WriteString(glyphs[0].S)

	flush := func() {
		cell.Text = cleanText(b.String())
		if cell.Text != "" {
			cells = append(cells, cell)
		}
		b.Reset()
	}

	for _, g := range glyphs[1:] {
		gap := g.X - cell.End
		if gap >= xGap {
			flush()
			cell = Cell{X: g.X}
		} else if gap > g.FontSize*wordSpaceRatio && g.FontSize > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		cell.End = math.Max(cell.End, g.X+g.W)
	}
	flush()
	return cells
}

// AlignColumns lays out the cell rows of one page as a table. Amounts are
// right-aligned on statements, so amount cells are anchored on their right
// edge and all other cells on their left edge. Anchors within tolerance of
// each other share a column, and every row gets one slot per column. Slots
// without a cell stay nil.
func AlignColumns(rows [][]Cell, tolerance float64) []models.RawRow {
	cols := columnAnchors(rows, tolerance)
	out := make([]models.RawRow, 0, len(rows))
	for _, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		raw := make(models.RawRow, len(cols))
		for _, c := range cells {
			col := nearestColumn(cols, c)
			if raw[col] != nil {
				joined := *raw[col] + " " + c.Text
				raw[col] = &joined
				continue
			}
			text := c.Text
			raw[col] = &text
		}
		out = append(out, raw)
	}
	return out
}

// ReadingOrder returns each row's cells as-is, without column alignment.
func ReadingOrder(rows [][]Cell) []models.RawRow {
	out := make([]models.RawRow, 0, len(rows))
	for _, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		raw := make([]string, len(cells))
		for i, c := range cells {
			raw[i] = c.Text
		}
		out = append(out, models.NewRawRow(raw...))
	}
	return out
}

// column is an anchor position on either the left or the right cell edge.
// left is the leftmost cell start seen in the column and orders the columns.
type column struct {
	right bool
	key   float64
	left  float64
}

func columnAnchors(rows [][]Cell, tolerance float64) []column {
	var starts, ends []float64
	for _, cells := range rows {
		for _, c := range cells {
			if isAmountCell(c.Text) {
				ends = append(ends, c.End)
			} else {
				starts = append(starts, c.X)
			}
		}
	}

	cols := append(clusterAnchors(starts, tolerance, false), clusterAnchors(ends, tolerance, true)...)
	for i := range cols {
		cols[i].left = math.Inf(1)
	}
	for _, cells := range rows {
		for _, c := range cells {
			i := nearestColumn(cols, c)
			cols[i].left = math.Min(cols[i].left, c.X)
		}
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].left < cols[j].left })
	return cols
}

func clusterAnchors(positions []float64, tolerance float64, right bool) []column {
	if len(positions) == 0 {
		return nil
	}
	sort.Float64s(positions)

	cols := []column{{right: right, key: positions[0]}}
	last := positions[0]
	for _, x := range positions[1:] {
		if x-last > tolerance {
			cols = append(cols, column{right: right, key: x})
		}
		last = x
	}
	return cols
}

// nearestColumn returns the column of the cell's kind whose anchor is
// closest to the matching cell edge.
func nearestColumn(cols []column, c Cell) int {
	right := isAmountCell(c.Text)
	pos := c.X
	if right {
		pos = c.End
	}
	best, bestDist := 0, math.Inf(1)
	for i, col := range cols {
		if col.right != right {
			continue
		}
		if d := math.Abs(col.key - pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

var amountMarkers = strings.NewReplacer("$", "", "CR", "", "DR", "", ",", "", " ", "")

// isAmountCell reports whether text looks like a printed money amount, with
// a decimal point and optional currency or credit markers.
func isAmountCell(text string) bool {
	s := amountMarkers.Replace(text)
	if !strings.Contains(s, ".") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

var layoutGap = regexp.MustCompile(`\s{2,}`)

// SplitLayoutLine splits a line of `pdftotext -layout` output into cells on
// runs of two or more spaces.
func SplitLayoutLine(line string) []string {
	line = strings.TrimSpace(cleanText(line))
	if line == "" {
		return nil
	}
	return layoutGap.Split(line, -1)
}

// cleanText applies NFKC so ligatures and non-breaking spaces come out as
// plain text, then trims.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
