// Package evaluator runs a statement document through extraction, row
// reconstruction, classification and scoring.
package evaluator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-analyzer/internal/classify"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// RowExtractor reads raw table rows from a document on disk.
type RowExtractor interface {
	ExtractRows(ctx context.Context, path string) ([]models.RawRow, error)
}

// RecordParser reconstructs transactions from raw rows.
type RecordParser interface {
	Run(rows []models.RawRow) ([]models.Record, error)
}

// Config holds the non-component settings of an Evaluator.
type Config struct {
	Params      classify.Params
	Categories  metrics.Categories
	Weights     metrics.Weights
	Concurrency int
}

// Evaluator turns statement documents into loan evaluations.
type Evaluator struct {
	extractor  RowExtractor
	parser     RecordParser
	classifier classify.Classifier
	cfg        Config
	log        zerolog.Logger
}

// New returns an Evaluator built from its collaborators.
func New(ex RowExtractor, p RecordParser, c classify.Classifier, cfg Config, log zerolog.Logger) *Evaluator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Evaluator{extractor: ex, parser: p, classifier: c, cfg: cfg, log: log}
}

// Transactions extracts, reconstructs and classifies the transactions of
// the document at path.
func (e *Evaluator) Transactions(ctx context.Context, path string) ([]models.LabeledRecord, error) {
	rows, err := e.extractor.ExtractRows(ctx, path)
	if err != nil {
		return nil, err
	}
	records, err := e.parser.Run(rows)
	if err != nil {
		return nil, fmt.Errorf("reconstructing transactions of %s: %w", path, err)
	}
	labeled, err := e.classifier.Classify(ctx, records, e.cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("classifying transactions of %s: %w", path, err)
	}
	return labeled, nil
}

// Evaluate produces the full evaluation of one document. A document without
// recognisable transactions still yields an evaluation, with empty metrics
// and a data warning.
func (e *Evaluator) Evaluate(ctx context.Context, path string) (*models.Evaluation, error) {
	log := e.log.With().Str("source", filepath.Base(path)).Logger()
	ctx = logger.WithContext(ctx, log)

	txns, err := e.Transactions(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		log.Warn().Msg("no transactions found")
	}

	m := metrics.Aggregate(txns, e.cfg.Categories)
	score, msg := metrics.Score(m, e.cfg.Weights)

	ev := &models.Evaluation{
		ID:                   uuid.NewString(),
		Source:               filepath.Base(path),
		Transactions:         txns,
		Metrics:              m,
		LoanEligibilityScore: score,
		Message:              msg,
	}
	log.Info().Str("id", ev.ID).Int("transactions", len(txns)).Float64("score", score).Msg("evaluated statement")
	return ev, nil
}

// EvaluateAll evaluates independent documents in parallel. Results are in
// the order of paths. The first failure cancels the remaining work.
func (e *Evaluator) EvaluateAll(ctx context.Context, paths []string) ([]*models.Evaluation, error) {
	results := make([]*models.Evaluation, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, err := e.Evaluate(ctx, path)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", path, err)
			}
			results[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
