package parser

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Reasons reported by DropReason.
const (
	DropNoBalance      = "no_balance"
	DropOpeningClosing = "opening_closing"
	DropSummary        = "summary"
	DropTotal          = "total"
	DropAccountLine    = "account_line"
	DropImpossible     = "credit_exceeds_balance"
)

var summaryPhrases = []string{"staff assisted", "cheques written", "checks written"}

var totalLines = map[string]bool{
	"total":         true,
	"account total": true,
	"total 0 0 0":   true,
}

var transactionKeywords = []string{"fee", "withdrawal", "deposit", "transfer"}

// FilterRecords drops records that are not transactions, keeping the order
// of the rest. The second result counts dropped records per reason.
func FilterRecords(records []models.Record) ([]models.Record, map[string]int) {
	out := make([]models.Record, 0, len(records))
	dropped := make(map[string]int)
	for _, rec := range records {
		if reason := DropReason(rec); reason != "" {
			dropped[reason]++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

// DropReason returns why a record would be filtered out, or "" to keep it.
// Checks run in a fixed order and the first match wins.
func DropReason(rec models.Record) string {
	if rec.Balance == nil {
		return DropNoBalance
	}

	desc := strings.ToLower(rec.Description)
	switch {
	case strings.Contains(desc, "opening") || strings.Contains(desc, "closing"):
		return DropOpeningClosing
	case containsAny(desc, summaryPhrases):
		return DropSummary
	case totalLines[strings.TrimSpace(desc)]:
		return DropTotal
	case strings.Contains(desc, "account") && !containsAny(desc, transactionKeywords):
		return DropAccountLine
	case rec.Credit != nil && *rec.Credit > *rec.Balance:
		return DropImpossible
	}
	return ""
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
