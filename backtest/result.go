package backtest

// Result summarizes one finished run.
type Result struct {
	RunID string
	Start string // first trading date, YYYYMMDD
	End   string // last trading date, YYYYMMDD

	DayCount int
	Fills    int

	// FinalValue is the ending NAV, baseline 1.0.
	FinalValue  float64
	TotalReturn float64
	MaxDrawdown float64
}
