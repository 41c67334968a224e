// Package strategies provides action sources for the backtest runner.
// A strategy only emits action vectors; matching, sizing, and
// accounting live in market, ledger, and account.
package strategies

import "github.com/rustyeddy/stocksim/market"

// Strategy emits one action vector per trading date. Values are in
// [-1, 1] and interpreted by the configured allocation policy. A nil
// vector means "hold": the runner marks positions to the close without
// placing orders.
type Strategy interface {
	Name() string
	Actions(m *market.Market, dateIdx int, date string) []float64
}

// pctToAction maps a daily percent change in [-10, 10] to an action
// value in [-1, 1].
func pctToAction(pct float64) float64 {
	return pct * 0.1
}
