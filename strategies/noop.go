package strategies

import "github.com/rustyeddy/stocksim/market"

// Noop never trades. Useful as a baseline: the run's final value is
// exactly 1.0 minus nothing, since no fees are ever paid.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Actions(*market.Market, int, string) []float64 {
	return nil
}
