package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, run_id, date, side, code, volume, price, cash_change, fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RunID, r.Date, r.Side, r.Code,
		r.Volume, r.Price, r.CashChange, r.Fee,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, date, total_assets, balance, available, value, day_pnl, day_fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Date, e.TotalAssets, e.Balance,
		e.Available, e.Value, e.DayPnL, e.DayFee,
	)
	return err
}

// RecordRun upserts the run summary; the final value is typically
// written once more at the end of the run.
func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, policy, strategy, codes, investment, start, end, final_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			end = excluded.end,
			final_value = excluded.final_value`,
		r.RunID, r.Policy, r.Strategy, r.Codes,
		r.Investment, r.Start, r.End, r.FinalValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
