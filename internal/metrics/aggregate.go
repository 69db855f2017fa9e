// Package metrics aggregates classified transactions and scores loan
// eligibility from the aggregates.
package metrics

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Categories names the spending groups used for the essential spending ratio.
type Categories struct {
	Essential     []string `json:"essential_categories"`
	Discretionary []string `json:"discretionary_categories"`
}

// DefaultCategories returns the built-in essential and discretionary groups.
func DefaultCategories() Categories {
	return Categories{
		Essential:     []string{"Rent", "Utilities", "Bill Payment"},
		Discretionary: []string{"Food", "Medical", "Entertainment"},
	}
}

// Aggregate computes statement metrics over records in statement order.
// Balance figures come from rows that carry a balance.
func Aggregate(records []models.LabeledRecord, cats Categories) models.Metrics {
	m := models.Metrics{
		CategoryExpensesDebit: make(map[string]float64),
		CategoryIncomeCredit:  make(map[string]float64),
	}

	var balances []float64
	income, expenses := decimal.Zero, decimal.Zero
	debitByCat := make(map[string]decimal.Decimal)
	creditByCat := make(map[string]decimal.Decimal)
	var debits []float64

	for _, rec := range records {
		if rec.Balance != nil {
			balances = append(balances, *rec.Balance)
		}
		if rec.Debit != nil {
			d := decimal.NewFromFloat(*rec.Debit)
			expenses = expenses.Add(d)
			debitByCat[rec.Category] = debitByCat[rec.Category].Add(d)
			debits = append(debits, *rec.Debit)
		}
		if rec.Credit != nil {
			c := decimal.NewFromFloat(*rec.Credit)
			income = income.Add(c)
			creditByCat[rec.Category] = creditByCat[rec.Category].Add(c)
		}
	}

	if len(balances) > 0 {
		start, end := balances[0], balances[len(balances)-1]
		lo, hi := start, start
		for _, b := range balances[1:] {
			lo = math.Min(lo, b)
			hi = math.Max(hi, b)
		}
		m.StartingBalance = models.Float(start)
		m.EndingBalance = models.Float(end)
		m.MinBalance = models.Float(lo)
		m.MaxBalance = models.Float(hi)
		if start != 0 {
			m.MinBalanceRatio = models.Float(lo / start)
			m.MaxBalanceRatio = models.Float(hi / start)
		}
	}

	m.TotalIncome = income.InexactFloat64()
	m.TotalExpenses = expenses.InexactFloat64()
	m.NetCashFlow = income.Sub(expenses).InexactFloat64()

	essential, discretionary := decimal.Zero, decimal.Zero
	for cat, sum := range debitByCat {
		m.CategoryExpensesDebit[cat] = sum.InexactFloat64()
		if containsFold(cats.Essential, cat) {
			essential = essential.Add(sum)
		}
		if containsFold(cats.Discretionary, cat) {
			discretionary = discretionary.Add(sum)
		}
	}
	for cat, sum := range creditByCat {
		m.CategoryIncomeCredit[cat] = sum.InexactFloat64()
	}
	m.EssentialSpending = essential.InexactFloat64()
	m.DiscretionarySpending = discretionary.InexactFloat64()

	if mean, std, ok := meanStd(debits); ok {
		m.SpendingStd = models.Float(std)
		if mean != 0 {
			m.SpendingCV = models.Float(std / mean)
		}
	}
	return m
}

// meanStd returns the mean and sample standard deviation. ok is false with
// fewer than two values.
func meanStd(values []float64) (mean, std float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(n-1)), true
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
