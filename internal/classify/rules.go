package classify

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Rule maps keywords to a category. Rules earlier in a list win when several
// match the same text.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules returns the built-in keyword rules.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Rent", Keywords: []string{"rent", "apartment", "lease"}},
		{Category: "Salary", Keywords: []string{"salary", "payroll", "credited", "wages"}},
		{Category: "Utilities", Keywords: []string{"bill", "bpay", "utility", "electricity", "water", "phone", "fone", "gas", "internet"}},
		{Category: "Transfer", Keywords: []string{"transfer"}},
		{Category: "Withdrawal", Keywords: []string{"withdrawal", "cash", "wd", "atm"}},
		{Category: "Food", Keywords: []string{"restaurant", "cafe", "grocery", "supermarket", "woolworths", "coles"}},
		{Category: "Entertainment", Keywords: []string{"netflix", "spotify", "cinema"}},
		{Category: "Medical", Keywords: []string{"pharmacy", "medical", "doctor", "chemist"}},
	}
}

// MergeRules overrides the keywords of base rules by category name and
// appends categories base does not have, in name order.
func MergeRules(base []Rule, overrides map[string][]string) []Rule {
	out := make([]Rule, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		key := strings.ToLower(r.Category)
		seen[key] = true
		for cat, kws := range overrides {
			if strings.ToLower(cat) == key {
				r = Rule{Category: r.Category, Keywords: kws}
				break
			}
		}
		out = append(out, r)
	}

	extra := make([]string, 0, len(overrides))
	for cat := range overrides {
		if !seen[strings.ToLower(cat)] {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	for _, cat := range extra {
		out = append(out, Rule{Category: cat, Keywords: overrides[cat]})
	}
	return out
}

// Engine finds the first rule with a keyword that occurs as a whole word in
// a text, in a single pass over the text.
type Engine struct {
	// The matcher keeps per-call state, so Match calls are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	// ruleOf[i] is the index of the rule owning pattern i.
	ruleOf []int
	rules  []Rule
}

// NewEngine compiles rules into a matcher.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{rules: rules}
	var patterns []string
	for i, r := range rules {
		for _, kw := range r.Keywords {
			kw = normalizeText(kw)
			if kw == "" {
				continue
			}
			// Padding with spaces makes every hit a whole-word hit.
			patterns = append(patterns, " "+kw+" ")
			e.ruleOf = append(e.ruleOf, i)
		}
	}
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(patterns)
	}
	return e
}

// Match returns the category of the highest priority rule matching text,
// or "" when none does.
func (e *Engine) Match(text string) string {
	if e.matcher == nil {
		return ""
	}
	padded := " " + normalizeText(text) + " "

	e.mu.Lock()
	hits := e.matcher.Match([]byte(padded))
	e.mu.Unlock()

	best := -1
	for _, pattern := range hits {
		if rule := e.ruleOf[pattern]; best < 0 || rule < best {
			best = rule
		}
	}
	if best < 0 {
		return ""
	}
	return e.rules[best].Category
}

// RuleClassifier labels each record independently by keyword rules.
type RuleClassifier struct {
	engine *Engine
}

// NewRuleClassifier returns a classifier over the given rules.
func NewRuleClassifier(rules []Rule) *RuleClassifier {
	return &RuleClassifier{engine: NewEngine(rules)}
}

func (c *RuleClassifier) Classify(ctx context.Context, records []models.Record, p Params) ([]models.LabeledRecord, error) {
	out := make([]models.LabeledRecord, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = models.LabeledRecord{Record: rec, Category: p.resolve(c.engine.Match(rec.Description))}
	}
	return out, nil
}

// normalizeText lower-cases s, turns punctuation into spaces and collapses
// whitespace.
func normalizeText(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	return strings.Join(fields, " ")
}
