package journal

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	assert.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('fills','equity','runs')`)
	assert.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["fills"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteFillRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := FillRecord{
		ID:         "F1",
		RunID:      "R1",
		Date:       "20200102",
		Side:       "sell",
		Code:       "000001.SZ",
		Volume:     500,
		Price:      10.2,
		CashChange: 5090.4,
		Fee:        9.6,
	}
	assert.NoError(t, j.RecordFill(rec))

	got, err := j.GetFill("F1")
	assert.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = j.GetFill("nope")
	assert.Error(t, err)
}

func TestSQLiteListByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	fills := []FillRecord{
		{ID: "F2", RunID: "R1", Date: "20200103", Side: "sell", Code: "A", Volume: 100, Price: 11, CashChange: 1098.35, Fee: 1.65},
		{ID: "F1", RunID: "R1", Date: "20200102", Side: "buy", Code: "A", Volume: 100, Price: 10, CashChange: -1005, Fee: 5},
		{ID: "F3", RunID: "R2", Date: "20200102", Side: "buy", Code: "B", Volume: 200, Price: 5, CashChange: -1005, Fee: 5},
	}
	for _, rec := range fills {
		assert.NoError(t, j.RecordFill(rec))
	}

	got, err := j.ListFillsByRun("R1")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "F1", got[0].ID, "ordered by date")
	assert.Equal(t, "F2", got[1].ID)

	assert.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Date: "20200102", TotalAssets: 1e5, Balance: 1e5, Available: 1e5, Value: 1.0}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Date: "20200103", TotalAssets: 1.001e5, Balance: 1.001e5, Available: 1.001e5, Value: 1.001}))

	curve, err := j.ListEquityByRun("R1")
	assert.NoError(t, err)
	assert.Len(t, curve, 2)
	assert.Equal(t, "20200102", curve[0].Date)
}

func TestSQLiteRunUpsert(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	run := RunRecord{
		RunID:      "R1",
		Policy:     "equal",
		Strategy:   "buy_and_hold",
		Codes:      "000001.SZ,600000.SH",
		Investment: 1e5,
		Start:      "20200102",
		End:        "20200102",
		FinalValue: 1.0,
	}
	assert.NoError(t, j.RecordRun(run))

	run.End = "20201231"
	run.FinalValue = 1.0832
	assert.NoError(t, j.RecordRun(run))

	got, err := j.GetRun("R1")
	assert.NoError(t, err)
	assert.Equal(t, "20201231", got.End)
	assert.InDelta(t, 1.0832, got.FinalValue, 1e-9)
}
