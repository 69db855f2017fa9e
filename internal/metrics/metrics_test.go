package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func labeled(category string, debit, credit, balance *float64) models.LabeledRecord {
	return models.LabeledRecord{
		Record:   models.Record{Debit: debit, Credit: credit, Balance: balance},
		Category: category,
	}
}

func sample() []models.LabeledRecord {
	f := models.Float
	return []models.LabeledRecord{
		labeled("Salary", nil, nil, f(1000)),
		labeled("Rent", f(400), nil, f(600)),
		labeled("utilities", f(100), nil, f(500)),
		labeled("Food", f(100), nil, f(400)),
		labeled("Salary", nil, f(900), f(1300)),
	}
}

func TestAggregate(t *testing.T) {
	m := Aggregate(sample(), DefaultCategories())

	assert.Equal(t, 1000.0, *m.StartingBalance)
	assert.Equal(t, 1300.0, *m.EndingBalance)
	assert.Equal(t, 400.0, *m.MinBalance)
	assert.Equal(t, 1300.0, *m.MaxBalance)
	assert.InDelta(t, 0.4, *m.MinBalanceRatio, 1e-9)
	assert.InDelta(t, 1.3, *m.MaxBalanceRatio, 1e-9)

	assert.Equal(t, 900.0, m.TotalIncome)
	assert.Equal(t, 600.0, m.TotalExpenses)
	assert.Equal(t, 300.0, m.NetCashFlow)

	assert.Equal(t, map[string]float64{"Rent": 400, "utilities": 100, "Food": 100}, m.CategoryExpensesDebit)
	assert.Equal(t, map[string]float64{"Salary": 900}, m.CategoryIncomeCredit)
	assert.Equal(t, 500.0, m.EssentialSpending, "category names compare case-insensitively")
	assert.Equal(t, 100.0, m.DiscretionarySpending)

	// debits 400, 100, 100: mean 200, sample variance 30000
	require.NotNil(t, m.SpendingStd)
	assert.InDelta(t, 173.2050807, *m.SpendingStd, 1e-6)
	assert.InDelta(t, 0.8660254, *m.SpendingCV, 1e-6)
}

func TestAggregate_ExactSums(t *testing.T) {
	f := models.Float
	m := Aggregate([]models.LabeledRecord{
		labeled("A", f(0.1), nil, f(10)),
		labeled("A", f(0.2), nil, f(9.7)),
	}, DefaultCategories())
	assert.Equal(t, 0.3, m.TotalExpenses)
	assert.Equal(t, 0.3, m.CategoryExpensesDebit["A"])
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil, DefaultCategories())
	assert.Nil(t, m.StartingBalance)
	assert.Nil(t, m.MinBalanceRatio)
	assert.Nil(t, m.SpendingStd)
	assert.Nil(t, m.SpendingCV)
	assert.Zero(t, m.TotalIncome)
	assert.NotNil(t, m.CategoryExpensesDebit)
}

func TestAggregate_SingleDebitHasNoStd(t *testing.T) {
	f := models.Float
	m := Aggregate([]models.LabeledRecord{labeled("Rent", f(5), nil, f(5))}, DefaultCategories())
	assert.Nil(t, m.SpendingStd)
	assert.Nil(t, m.SpendingCV)
}

func TestAggregate_ZeroStartingBalance(t *testing.T) {
	f := models.Float
	m := Aggregate([]models.LabeledRecord{labeled("", nil, nil, f(0)), labeled("", nil, f(5), f(5))}, DefaultCategories())
	assert.NotNil(t, m.StartingBalance)
	assert.Nil(t, m.MinBalanceRatio)
	assert.Nil(t, m.MaxBalanceRatio)
}

func TestScore(t *testing.T) {
	m := Aggregate(sample(), DefaultCategories())

	score, msg := Score(m, DefaultWeights())

	// increase 20, min ratio 0.4 -> -10, positive net 15,
	// essential 500/600 -> 15, cv 0.87 -> 0
	assert.InDelta(t, 40, score, 1e-9)
	assert.Equal(t, MessageComplete, msg)
}

func TestScore_BalanceDecreaseScaled(t *testing.T) {
	m := models.Metrics{
		StartingBalance: models.Float(1000),
		EndingBalance:   models.Float(500),
		NetCashFlow:     -500,
	}
	score, msg := Score(m, DefaultWeights())
	assert.InDelta(t, 10*0.5-10, score, 1e-9)
	assert.Equal(t, MessageSignificant, msg)
}

func TestScore_Messages(t *testing.T) {
	f := models.Float
	m := models.Metrics{
		StartingBalance: f(100),
		EndingBalance:   f(100),
		MinBalanceRatio: f(0.9),
		NetCashFlow:     1,
	}
	_, msg := Score(m, DefaultWeights())
	assert.Equal(t, MessageSignificant, msg, "3 of 5 components")

	m.TotalExpenses = 10
	_, msg = Score(m, DefaultWeights())
	assert.Equal(t, MessagePartial, msg, "4 of 5 components")
}

func TestScore_Variability(t *testing.T) {
	w := DefaultWeights()
	base := models.Metrics{NetCashFlow: 1}

	low, high, mid := base, base, base
	low.SpendingCV = models.Float(0.1)
	high.SpendingCV = models.Float(1.5)
	mid.SpendingCV = models.Float(0.5)

	s, _ := Score(low, w)
	assert.InDelta(t, w.PositiveNet+w.LowVariability, s, 1e-9)
	s, _ = Score(high, w)
	assert.InDelta(t, w.PositiveNet+w.HighVariability, s, 1e-9)
	s, _ = Score(mid, w)
	assert.InDelta(t, w.PositiveNet, s, 1e-9)
}

func TestWeightsFromMap(t *testing.T) {
	w := WeightsFromMap(DefaultWeights(), map[string]float64{"positive_net": 0, "unknown": 3})
	assert.Zero(t, w.PositiveNet)
	assert.Equal(t, DefaultWeights().NegativeNet, w.NegativeNet)
}
