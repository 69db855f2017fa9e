package metrics

import (
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Weights are the points each scoring outcome contributes.
type Weights struct {
	BalanceIncrease float64
	BalanceDecrease float64
	MinBalanceHigh  float64
	MinBalanceMid   float64
	MinBalanceLow   float64
	PositiveNet     float64
	NegativeNet     float64
	EssentialHigh   float64
	EssentialLow    float64
	LowVariability  float64
	HighVariability float64
}

// DefaultWeights returns the built-in scoring weights.
func DefaultWeights() Weights {
	return Weights{
		BalanceIncrease: 20,
		BalanceDecrease: 10,
		MinBalanceHigh:  20,
		MinBalanceMid:   10,
		MinBalanceLow:   -10,
		PositiveNet:     15,
		NegativeNet:     -10,
		EssentialHigh:   15,
		EssentialLow:    -5,
		LowVariability:  10,
		HighVariability: -10,
	}
}

// WeightsFromMap overrides base with the values in m keyed by their
// snake_case names. Unknown keys are ignored.
func WeightsFromMap(base Weights, m map[string]float64) Weights {
	fields := map[string]*float64{
		"balance_increase": &base.BalanceIncrease,
		"balance_decrease": &base.BalanceDecrease,
		"min_balance_high": &base.MinBalanceHigh,
		"min_balance_mid":  &base.MinBalanceMid,
		"min_balance_low":  &base.MinBalanceLow,
		"positive_net":     &base.PositiveNet,
		"negative_net":     &base.NegativeNet,
		"essential_high":   &base.EssentialHigh,
		"essential_low":    &base.EssentialLow,
		"low_variability":  &base.LowVariability,
		"high_variability": &base.HighVariability,
	}
	for k, v := range m {
		if f, ok := fields[k]; ok {
			*f = v
		}
	}
	return base
}

// Messages describing how much of the score could be computed.
const (
	MessageComplete    = "No data issues detected"
	MessagePartial     = "Some data is missing-a manual review of this applicant's data may be needed"
	MessageSignificant = "Significant data is missing-a manual review of this applicant's data is strongly recommended"
)

const scoreComponents = 5

// Score rates loan eligibility from five components: balance trend, minimum
// balance ratio, net cash flow, essential spending ratio and spending
// variability. Components without data are skipped and the returned message
// reports how many were skipped.
func Score(m models.Metrics, w Weights) (float64, string) {
	var score float64
	present := 0

	if m.StartingBalance != nil && *m.StartingBalance != 0 && m.EndingBalance != nil {
		present++
		if *m.EndingBalance >= *m.StartingBalance {
			score += w.BalanceIncrease
		} else {
			score += w.BalanceDecrease * (*m.EndingBalance / *m.StartingBalance)
		}
	}

	if m.MinBalanceRatio != nil {
		present++
		switch r := *m.MinBalanceRatio; {
		case r >= 0.8:
			score += w.MinBalanceHigh
		case r >= 0.5:
			score += w.MinBalanceMid
		default:
			score += w.MinBalanceLow
		}
	}

	present++
	if m.NetCashFlow > 0 {
		score += w.PositiveNet
	} else {
		score += w.NegativeNet
	}

	if m.TotalExpenses > 0 {
		present++
		if m.EssentialSpending/m.TotalExpenses >= 0.7 {
			score += w.EssentialHigh
		} else {
			score += w.EssentialLow
		}
	}

	if m.SpendingCV != nil {
		present++
		switch cv := *m.SpendingCV; {
		case cv < 0.3:
			score += w.LowVariability
		case cv > 1.0:
			score += w.HighVariability
		}
	}

	return score, dataMessage(present)
}

func dataMessage(present int) string {
	switch {
	case present == scoreComponents:
		return MessageComplete
	case float64(present) >= scoreComponents*0.7:
		return MessagePartial
	default:
		return MessageSignificant
	}
}
