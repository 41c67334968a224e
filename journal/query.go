package journal

import (
	"database/sql"
	"fmt"
)

// GetFill returns a single fill by ID.
func (j *SQLite) GetFill(fillID string) (FillRecord, error) {
	var rec FillRecord

	row := j.db.QueryRow(`
		SELECT fill_id, run_id, date, side, code, volume, price, cash_change, fee
		FROM fills
		WHERE fill_id = ?`, fillID)

	err := row.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Date,
		&rec.Side,
		&rec.Code,
		&rec.Volume,
		&rec.Price,
		&rec.CashChange,
		&rec.Fee,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return FillRecord{}, fmt.Errorf("fill %q not found", fillID)
		}
		return FillRecord{}, err
	}
	return rec, nil
}

// ListFillsByRun returns a run's fills in date order.
func (j *SQLite) ListFillsByRun(runID string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT fill_id, run_id, date, side, code, volume, price, cash_change, fee
		FROM fills
		WHERE run_id = ?
		ORDER BY date ASC, fill_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Date,
			&rec.Side,
			&rec.Code,
			&rec.Volume,
			&rec.Price,
			&rec.CashChange,
			&rec.Fee,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity curve in date order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, total_assets, balance, available, value, day_pnl, day_fee
		FROM equity
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.RunID,
			&e.Date,
			&e.TotalAssets,
			&e.Balance,
			&e.Available,
			&e.Value,
			&e.DayPnL,
			&e.DayFee,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns a run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, policy, strategy, codes, investment, start, end, final_value
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID,
		&r.Policy,
		&r.Strategy,
		&r.Codes,
		&r.Investment,
		&r.Start,
		&r.End,
		&r.FinalValue,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}
