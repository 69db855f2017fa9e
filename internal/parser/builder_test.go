package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestBuildRecords_BalanceDeltas(t *testing.T) {
	tbl := models.Table{
		{"01-Jan-2023", "Opening", "100"},
		{"02-Jan-2023", "Groceries", "80"},
		{"03-Jan-2023", "Refund", "95"},
	}

	recs := BuildRecords(tbl)
	require.Len(t, recs, 3)

	assert.Nil(t, recs[0].Debit)
	assert.Nil(t, recs[0].Credit)
	assert.Equal(t, 100.0, *recs[0].Balance)

	require.NotNil(t, recs[1].Debit)
	assert.InDelta(t, 20, *recs[1].Debit, 1e-9)
	assert.Nil(t, recs[1].Credit)

	require.NotNil(t, recs[2].Credit)
	assert.InDelta(t, 15, *recs[2].Credit, 1e-9)
	assert.Nil(t, recs[2].Debit)
}

func TestBuildRecords_FirstRowSecondAmountIsCredit(t *testing.T) {
	recs := BuildRecords(models.Table{{"01-Jan-2023", "Deposit", "500", "1000"}})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Credit)
	assert.Equal(t, 500.0, *recs[0].Credit)
	assert.Nil(t, recs[0].Debit)
	assert.Equal(t, 1000.0, *recs[0].Balance)
	assert.Equal(t, "Deposit", recs[0].Description)
}

func TestBuildRecords_ExplicitAmountIgnoredForDelta(t *testing.T) {
	recs := BuildRecords(models.Table{
		{"01-Jan-2023", "Salary", "1000"},
		{"02-Jan-2023", "Rent Payment", "999", "800"},
	})
	require.Len(t, recs, 2)
	require.NotNil(t, recs[1].Debit)
	assert.InDelta(t, 200, *recs[1].Debit, 1e-9)
	assert.Equal(t, "Rent Payment", recs[1].Description)
}

func TestBuildRecords_RowWithoutAmounts(t *testing.T) {
	recs := BuildRecords(models.Table{
		{"01-Jan-2023", "just text"},
		{"nothing here"},
	})
	require.Len(t, recs, 2)

	require.NotNil(t, recs[0].Date)
	assert.Equal(t, 2023, recs[0].Date.Year())
	assert.Nil(t, recs[0].Balance)
	assert.Empty(t, recs[0].Description)

	assert.Nil(t, recs[1].Date)
	assert.Nil(t, recs[1].Balance)
}

func TestBuildRecords_NoDateDescriptionFromLeft(t *testing.T) {
	recs := BuildRecords(models.Table{{"Card", "purchase", "25.00", "475.00"}})
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Date)
	assert.Equal(t, "Card purchase", recs[0].Description)
}

func TestBuildRecords_SecondDateSkippedInDescription(t *testing.T) {
	recs := BuildRecords(models.Table{{"01-Jan-2023", "02-Jan-2023", "Coffee", "4.50", "100"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "Coffee", recs[0].Description)
	assert.Equal(t, 1, recs[0].Date.Day())
}

func TestBuildRecords_LastBalanceCarriesOverUnbalancedRows(t *testing.T) {
	recs := BuildRecords(models.Table{
		{"01-Jan-2023", "A", "100"},
		{"note"},
		{"02-Jan-2023", "B", "60"},
	})
	require.Len(t, recs, 3)
	require.NotNil(t, recs[2].Debit)
	assert.InDelta(t, 40, *recs[2].Debit, 1e-9)
}

func TestBuildRecords_Empty(t *testing.T) {
	assert.Empty(t, BuildRecords(nil))
}
