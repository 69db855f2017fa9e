// Package classify assigns spending categories to reconstructed transactions.
package classify

import (
	"context"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// DefaultFallback is the category given to transactions nothing matches.
const DefaultFallback = "Other"

// DefaultCandidateLabels are the categories a classifier may emit.
var DefaultCandidateLabels = []string{
	"Rent",
	"Salary",
	"Utilities",
	"Bill payment",
	"Transfer",
	"Entertainment",
	"Food",
	"Medical",
	"Other Bills",
	"Other",
}

// Params are the per-call classification settings.
type Params struct {
	// CandidateLabels limits the categories that can be emitted. Empty means
	// every rule category is allowed.
	CandidateLabels []string
	Fallback        string
	// TopKeywords is how many frequent words describe a cluster.
	TopKeywords int
	// ClusterSimilarity is the 0-100 score two descriptions need to share a cluster.
	ClusterSimilarity int
}

// DefaultParams returns the settings used when nothing is configured.
func DefaultParams() Params {
	return Params{
		CandidateLabels:   DefaultCandidateLabels,
		Fallback:          DefaultFallback,
		TopKeywords:       10,
		ClusterSimilarity: 80,
	}
}

// Classifier labels every record with exactly one category. The output has
// the same length and order as the input.
type Classifier interface {
	Classify(ctx context.Context, records []models.Record, p Params) ([]models.LabeledRecord, error)
}

// resolve maps a rule category onto the candidate labels, keeping the
// candidate's spelling. Unknown categories become the fallback.
func (p Params) resolve(category string) string {
	fallback := p.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}
	if category == "" {
		return fallback
	}
	if len(p.CandidateLabels) == 0 {
		return category
	}
	for _, label := range p.CandidateLabels {
		if strings.EqualFold(label, category) {
			return label
		}
	}
	return fallback
}
