package models

// Metrics holds the aggregates computed over a classified statement.
// Pointer fields are nil when the statement did not contain enough data.
type Metrics struct {
	StartingBalance       *float64           `json:"starting_balance"`
	EndingBalance         *float64           `json:"ending_balance"`
	MinBalance            *float64           `json:"min_balance"`
	MaxBalance            *float64           `json:"max_balance"`
	MinBalanceRatio       *float64           `json:"min_balance_ratio"`
	MaxBalanceRatio       *float64           `json:"max_balance_ratio"`
	TotalIncome           float64            `json:"total_income"`
	TotalExpenses         float64            `json:"total_expenses"`
	CategoryExpensesDebit map[string]float64 `json:"category_expenses_debit"`
	CategoryIncomeCredit  map[string]float64 `json:"category_income_credit"`
	EssentialSpending     float64            `json:"essential_spending"`
	DiscretionarySpending float64            `json:"discretionary_spending"`
	SpendingStd           *float64           `json:"spending_std"`
	SpendingCV            *float64           `json:"spending_cv"`
	NetCashFlow           float64            `json:"net_cash_flow"`
}

// Evaluation is the end result of processing one statement document.
type Evaluation struct {
	ID                   string          `json:"id"`
	Source               string          `json:"source"`
	Transactions         []LabeledRecord `json:"transactions"`
	Metrics              Metrics         `json:"metrics"`
	LoanEligibilityScore float64         `json:"loan_eligibility_score"`
	Message              string          `json:"message"`
}
