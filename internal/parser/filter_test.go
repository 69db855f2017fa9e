package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func rec(desc string, credit, balance *float64) models.Record {
	return models.Record{Description: desc, Credit: credit, Balance: balance}
}

func TestDropReason(t *testing.T) {
	tests := []struct {
		name string
		in   models.Record
		want string
	}{
		{"kept", rec("Rent Payment", nil, models.Float(800)), ""},
		{"no balance", rec("Rent Payment", nil, nil), DropNoBalance},
		{"opening balance", rec("Opening Balance", nil, models.Float(100)), DropOpeningClosing},
		{"closing uppercase", rec("CLOSING BALANCE", nil, models.Float(100)), DropOpeningClosing},
		{"staff assisted", rec("Staff Assisted Withdrawals", nil, models.Float(1)), DropSummary},
		{"cheques written", rec("Cheques written this period", nil, models.Float(1)), DropSummary},
		{"bare total", rec(" Total ", nil, models.Float(1)), DropTotal},
		{"account total", rec("Account Total", nil, models.Float(1)), DropTotal},
		{"totals not exact", rec("Total fees refund", nil, models.Float(1)), ""},
		{"account line", rec("Account number 1234", nil, models.Float(1)), DropAccountLine},
		{"account transfer kept", rec("Transfer to account 99", nil, models.Float(1)), ""},
		{"account fee kept", rec("Account fee", nil, models.Float(1)), ""},
		{"credit above balance", rec("Deposit", models.Float(150), models.Float(100)), DropImpossible},
		{"credit equal balance", rec("Deposit", models.Float(100), models.Float(100)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropReason(tt.in))
		})
	}
}

func TestFilterRecords_KeepsOrder(t *testing.T) {
	in := []models.Record{
		rec("A", nil, models.Float(1)),
		rec("Opening Balance", nil, models.Float(1)),
		rec("B", nil, models.Float(2)),
		rec("C", nil, nil),
		rec("D", nil, models.Float(3)),
	}

	out, dropped := FilterRecords(in)

	var descs []string
	for _, r := range out {
		descs = append(descs, r.Description)
	}
	assert.Equal(t, []string{"A", "B", "D"}, descs)
	assert.Equal(t, map[string]int{DropOpeningClosing: 1, DropNoBalance: 1}, dropped)
}
