package market

// Bar is one trading day of unadjusted OHLC data for a single code,
// together with the adjustment factor that reconciles it with the
// continuously-adjusted series.
type Bar struct {
	Date      string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	PreClose  float64
	Change    float64
	PctChg    float64 // percent, e.g. 2.5 for +2.5%
	Vol       float64
	Amount    float64
	AdjFactor float64
}

// Locked reports whether the bar traded in a zero-width range, which
// together with the percent change signals a limit-up or limit-down
// board.
func (b Bar) Locked() bool {
	return b.High == b.Low
}
