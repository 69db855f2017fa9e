package classify

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Clusterer groups descriptions. It returns one cluster id per description.
type Clusterer interface {
	Cluster(descriptions []string, similarity int) []int
}

// Assigner picks a category for every cluster from its member descriptions.
type Assigner interface {
	Assign(clusters map[int][]string, p Params) map[int]string
}

// ClusterClassifier labels records by grouping similar descriptions and
// giving every member of a group the same category.
type ClusterClassifier struct {
	Clusterer Clusterer
	Assigner  Assigner
}

// NewClusterClassifier returns a classifier using fuzzy clustering and
// keyword assignment over the given rules.
func NewClusterClassifier(rules []Rule) *ClusterClassifier {
	return &ClusterClassifier{
		Clusterer: FuzzyClusterer{},
		Assigner:  NewKeywordAssigner(rules),
	}
}

func (c *ClusterClassifier) Classify(ctx context.Context, records []models.Record, p Params) ([]models.LabeledRecord, error) {
	descriptions := make([]string, len(records))
	for i, rec := range records {
		descriptions[i] = rec.Description
	}

	ids := c.Clusterer.Cluster(descriptions, p.ClusterSimilarity)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	members := make(map[int][]string)
	for i, id := range ids {
		members[id] = append(members[id], descriptions[i])
	}
	categories := c.Assigner.Assign(members, p)
	log := logger.FromContext(ctx)
	log.Debug().Int("records", len(records)).Int("clusters", len(members)).Msg("clustered descriptions")

	out := make([]models.LabeledRecord, len(records))
	for i, rec := range records {
		out[i] = models.LabeledRecord{
			Record:   rec,
			Category: p.resolve(categories[ids[i]]),
			Cluster:  ids[i],
		}
	}
	return out, nil
}

// FuzzyClusterer puts a description in the first earlier cluster whose
// first member is similar enough by Levenshtein distance. Digits are ignored
// so "WOOLWORTHS 1234" and "WOOLWORTHS 5678" end up together.
type FuzzyClusterer struct{}

func (FuzzyClusterer) Cluster(descriptions []string, similarity int) []int {
	ids := make([]int, len(descriptions))
	var canonical []string
	for i, desc := range descriptions {
		key := clusterKey(desc)
		ids[i] = -1
		for id, c := range canonical {
			if similarityScore(key, c) >= similarity {
				ids[i] = id
				break
			}
		}
		if ids[i] < 0 {
			ids[i] = len(canonical)
			canonical = append(canonical, key)
		}
	}
	return ids
}

// similarityScore is 100 for equal strings and falls linearly with the edit
// distance relative to the longer string.
func similarityScore(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	dist := fuzzy.LevenshteinDistance(a, b)
	return 100 - (100*dist)/maxLen
}

func clusterKey(desc string) string {
	return strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, normalizeText(desc))), " ")
}

// KeywordAssigner maps each cluster to a category from the most frequent
// words of its descriptions.
type KeywordAssigner struct {
	engine *Engine
}

// NewKeywordAssigner returns an assigner over the given rules.
func NewKeywordAssigner(rules []Rule) *KeywordAssigner {
	return &KeywordAssigner{engine: NewEngine(rules)}
}

func (a *KeywordAssigner) Assign(clusters map[int][]string, p Params) map[int]string {
	out := make(map[int]string, len(clusters))
	for id, descs := range clusters {
		out[id] = a.engine.Match(strings.Join(TopKeywords(descs, p.TopKeywords), " "))
	}
	return out
}

// TopKeywords returns the n most frequent words across texts after lower
// casing and removing punctuation. Ties keep first-seen order.
func TopKeywords(texts []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, w := range strings.Fields(stripPunctuation(strings.ToLower(text))) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if n > 0 && len(order) > n {
		order = order[:n]
	}
	return order
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return r
		}
		return -1
	}, s)
}
