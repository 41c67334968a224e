// Package journal records what a backtest did: every fill, every
// end-of-day equity snapshot, and the run summary. The core engines
// call through the Journal interface and never know where records go.
package journal

// FillRecord is one executed order.
type FillRecord struct {
	ID         string
	RunID      string
	Date       string // trade date, YYYYMMDD
	Side       string // "buy" or "sell"
	Code       string
	Volume     float64
	Price      float64
	CashChange float64
	Fee        float64
}

// EquitySnapshot is the account state at the end of a bar or day.
type EquitySnapshot struct {
	RunID       string
	Date        string
	TotalAssets float64
	Balance     float64
	Available   float64
	Value       float64 // NAV, baseline 1.0
	DayPnL      float64
	DayFee      float64
}

// RunRecord summarizes one backtest run.
type RunRecord struct {
	RunID      string
	Policy     string
	Strategy   string
	Codes      string // comma-joined
	Investment float64
	Start      string
	End        string
	FinalValue float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error       { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
