package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSV writes fills and equity snapshots to two CSV files, flushing
// after every record so a crashed run still leaves usable output.
type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"fill_id", "run_id", "date", "side", "code", "volume", "price", "cash_change", "fee"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "date", "total_assets", "balance", "available", "value", "day_pnl", "day_fee"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fills: fw, equity: ew, ff: ff, ef: ef}, nil
}

func (j *CSV) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.ID,
		r.RunID,
		r.Date,
		r.Side,
		r.Code,
		f(r.Volume),
		f(r.Price),
		f(r.CashChange),
		f(r.Fee),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Date,
		f(e.TotalAssets),
		f(e.Balance),
		f(e.Available),
		f(e.Value),
		f(e.DayPnL),
		f(e.DayFee),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
