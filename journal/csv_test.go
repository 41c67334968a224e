package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSVHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fillsPath, equityPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	fillsData, err := os.ReadFile(fillsPath)
	assert.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	fillsHeader, err := csv.NewReader(strings.NewReader(string(fillsData))).Read()
	assert.NoError(t, err)
	equityHeader, err := csv.NewReader(strings.NewReader(string(equityData))).Read()
	assert.NoError(t, err)

	wantFills := []string{"fill_id", "run_id", "date", "side", "code", "volume", "price", "cash_change", "fee"}
	assert.Equal(t, wantFills, fillsHeader)

	wantEquity := []string{"run_id", "date", "total_assets", "balance", "available", "value", "day_pnl", "day_fee"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVRecordFill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "fills.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	err = j.RecordFill(FillRecord{
		ID:         "F1",
		RunID:      "R1",
		Date:       "20200102",
		Side:       "buy",
		Code:       "000001.SZ",
		Volume:     1000,
		Price:      10.0,
		CashChange: -10010.0,
		Fee:        10.0,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "fills.csv"))
	assert.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "F1", rows[1][0])
	assert.Equal(t, "buy", rows[1][3])
	assert.Equal(t, "-10010.000000", rows[1][7])
}

func TestCSVRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "fills.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	err = j.RecordEquity(EquitySnapshot{
		RunID:       "R1",
		Date:        "20200102",
		TotalAssets: 100090.0,
		Balance:     89990.0,
		Available:   89990.0,
		Value:       1.0009,
		DayPnL:      90.0,
		DayFee:      10.0,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "100090.000000", rows[1][2])
	assert.Equal(t, "1.000900", rows[1][5])
}
