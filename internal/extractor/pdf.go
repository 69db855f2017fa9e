// Package extractor turns a statement PDF into raw table rows.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// ErrNoRows is returned when no extraction method produced any row.
var ErrNoRows = errors.New("extractor: no rows extracted")

// Extraction modes.
const (
	ModeTable = "table"
	ModeWords = "words"
)

// Options controls how glyphs become rows and cells.
type Options struct {
	Mode          string
	YTolerance    float64
	XGapThreshold float64
	UsePdftotext  bool
}

// DefaultOptions returns the extraction settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		Mode:          ModeTable,
		YTolerance:    3,
		XGapThreshold: 5,
		UsePdftotext:  true,
	}
}

// PDF extracts rows from PDF files on disk.
type PDF struct {
	opts Options
	log  zerolog.Logger
}

// New returns a PDF extractor.
func New(opts Options, log zerolog.Logger) *PDF {
	if opts.Mode == "" {
		opts.Mode = ModeTable
	}
	return &PDF{opts: opts, log: log}
}

// ExtractRows reads every page of the PDF at path and returns its rows in
// page order. The glyph layout read through the PDF library is tried first.
// When it fails or yields unreadable text, pdftotext is used if installed.
func (p *PDF) ExtractRows(ctx context.Context, path string) ([]models.RawRow, error) {
	rows, libErr := p.extractWithLibrary(path)
	if libErr == nil && isReadable(rows) {
		p.log.Debug().Str("method", "library").Int("rows", len(rows)).Msg("extracted rows")
		return rows, nil
	}
	if libErr != nil {
		p.log.Debug().Err(libErr).Msg("pdf library extraction failed")
	}

	if p.opts.UsePdftotext {
		fallback, err := extractWithPdftotext(ctx, path)
		if err == nil && isReadable(fallback) {
			p.log.Debug().Str("method", "pdftotext").Int("rows", len(fallback)).Msg("extracted rows")
			return fallback, nil
		}
		if err != nil {
			p.log.Debug().Err(err).Msg("pdftotext extraction failed")
		}
	}

	if libErr != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, libErr)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("extracting %s: %w", path, ErrNoRows)
	}
	// Low quality text is still better than nothing for the row heuristics.
	return rows, nil
}

func (p *PDF) extractWithLibrary(path string) (rows []models.RawRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages: %w", ErrNoRows)
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows = append(rows, p.pageRows(page.Content().Text)...)
	}
	return rows, nil
}

func (p *PDF) pageRows(text []pdf.Text) []models.RawRow {
	glyphs := make([]Glyph, 0, len(text))
	for _, t := range text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}

	physical := GroupRows(glyphs, p.opts.YTolerance)
	cells := make([][]Cell, 0, len(physical))
	for _, row := range physical {
		cells = append(cells, MergeCells(row, p.opts.XGapThreshold))
	}

	if p.opts.Mode == ModeWords {
		return ReadingOrder(cells)
	}
	return AlignColumns(cells, p.opts.XGapThreshold)
}

// extractWithPdftotext runs the poppler pdftotext command in layout mode and
// splits each line into cells.
func extractWithPdftotext(ctx context.Context, path string) ([]models.RawRow, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	return layoutRows(string(out)), nil
}

func layoutRows(text string) []models.RawRow {
	var rows []models.RawRow
	for _, line := range strings.Split(text, "\n") {
		if cells := SplitLayoutLine(line); len(cells) > 0 {
			rows = append(rows, models.NewRawRow(cells...))
		}
	}
	return rows
}

// textQuality returns the share of characters that are plain ASCII letters,
// digits, whitespace or common statement punctuation. Custom font encodings
// the library cannot decode come out as mostly other runes.
func textQuality(rows []models.RawRow) float64 {
	total, readable := 0, 0
	for _, row := range rows {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			for _, r := range *cell {
				total++
				if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r)) {
					readable++
				} else if strings.ContainsRune("£€", r) {
					readable++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func isReadable(rows []models.RawRow) bool {
	return len(rows) > 0 && textQuality(rows) > 0.6
}
