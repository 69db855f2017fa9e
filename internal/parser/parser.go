// Package parser reconstructs statement transactions from extracted table rows.
package parser

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/table"
)

// Options tunes the row clean-up stages that run before records are built.
type Options struct {
	// EmptyThreshold is the blank-cell fraction at which a column is dropped.
	EmptyThreshold float64
	// FixTransactionDescription enables redistribution of overflowed
	// multi-line description cells. Only rows whose cells keep their line
	// breaks need it; the glyph extractor emits one row per text line.
	FixTransactionDescription bool
	// SkipCellNormalization leaves "$" and "CR" tokens in the cells.
	SkipCellNormalization bool
	// DescriptionColumn is the column inspected by the description repair.
	DescriptionColumn int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		EmptyThreshold:    table.DefaultEmptyThreshold,
		DescriptionColumn: table.DefaultDescriptionColumn,
	}
}

// Pipeline turns raw extracted rows into filtered transaction records.
// It holds no state between runs and is safe for concurrent use.
type Pipeline struct {
	opts Options
	log  zerolog.Logger
}

// New returns a Pipeline. A zero EmptyThreshold falls back to the default.
func New(opts Options, log zerolog.Logger) *Pipeline {
	if opts.EmptyThreshold <= 0 {
		opts.EmptyThreshold = table.DefaultEmptyThreshold
	}
	return &Pipeline{opts: opts, log: log}
}

// Run executes merge, prune, normalize, repair, build and filter in that
// order. A statement the heuristics cannot make sense of yields an empty
// slice, not an error.
func (p *Pipeline) Run(rows []models.RawRow) ([]models.Record, error) {
	merged := table.MergeRows(rows)
	p.log.Debug().Int("rows_in", len(rows)).Int("rows_out", len(merged)).Msg("merged split rows")
	if len(merged) == 0 {
		return []models.Record{}, nil
	}

	t, err := table.PruneColumns(merged, p.opts.EmptyThreshold)
	if err != nil {
		return nil, fmt.Errorf("pruning columns: %w", err)
	}
	if len(t[0]) != len(merged[0]) {
		p.log.Debug().Int("columns", len(t[0])).Msg("pruned empty columns")
	}

	if !p.opts.SkipCellNormalization {
		t = table.NormalizeCells(t)
	}

	if p.opts.FixTransactionDescription {
		res := table.RepairDescriptions(t, p.opts.DescriptionColumn)
		t = res.Table
		p.log.Debug().Int("fixed", res.Fixed).Int("dropped_groups", res.Dropped).Msg("repaired descriptions")
	}

	records, dropped := FilterRecords(BuildRecords(t))

	ev := p.log.Debug()
	for reason, n := range dropped {
		ev = ev.Int(reason, n)
	}
	ev.Msg("filtered records")
	p.log.Info().Int("records", len(records)).Msg("reconstructed transactions")

	return records, nil
}
