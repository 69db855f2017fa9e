package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func sampleTransactions() []models.LabeledRecord {
	d1 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC)
	return []models.LabeledRecord{
		{
			Record:   models.Record{Date: &d1, Description: "CARD PAYMENT TESCO, LONDON", Debit: models.Float(25.99), Balance: models.Float(1234.56)},
			Category: "Food",
		},
		{
			Record:   models.Record{Date: &d2, Description: "SALARY", Credit: models.Float(2500), Balance: models.Float(3734.56)},
			Category: "Salary",
		},
		{
			Record:   models.Record{Description: "no date", Balance: models.Float(1)},
			Category: "Other",
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeSource: true}
	require.NoError(t, w.Write(&buf, "jan.pdf", sampleTransactions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# Source,jan.pdf", lines[0])
	assert.Equal(t, "Date,Transaction Description,Debit,Credit,Balance,Category", lines[1])
	assert.Equal(t, `2024-01-15,"CARD PAYMENT TESCO, LONDON",25.99,,1234.56,Food`, lines[2])
	assert.Equal(t, "2024-01-16,SALARY,,2500.00,3734.56,Salary", lines[3])
	assert.Equal(t, ",no date,,,1.00,Other", lines[4])
}

func TestCSVWriter_NoSource(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, "jan.pdf", nil))
	assert.Equal(t, "Date,Transaction Description,Debit,Credit,Balance,Category\n", buf.String())
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := &CSVWriter{}
	require.NoError(t, w.WriteToFile(path, "", sampleTransactions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SALARY")
}

func TestCSVWriter_WriteToFile_BadPath(t *testing.T) {
	w := &CSVWriter{}
	err := w.WriteToFile(filepath.Join(t.TempDir(), "missing", "out.csv"), "", nil)
	assert.Error(t, err)
}

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &XLSXWriter{}
	require.NoError(t, w.Write(&buf, sampleTransactions()))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "2024-01-15", rows[1][0])
	assert.Equal(t, "25.99", rows[1][2])
	assert.Equal(t, "Salary", rows[2][5])

	typ, err := book.GetCellType(SheetName, "E2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
}
