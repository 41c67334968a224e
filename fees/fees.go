// Package fees computes trading commissions.
//
// Fees are a pure function of the commission schedule and the trade
// notional; nothing here carries state. Results are rounded to a fixed
// number of decimals so that fee arithmetic stays stable over thousands
// of bars.
package fees

import "math"

// A-share style defaults. Buy and sell legs carry different rates
// because stamp duty is only charged on the sell side.
const (
	DefaultBuyRate       = 0.001
	DefaultSellRate      = 0.0015
	DefaultMinCommission = 5.0
	DefaultRoundLot      = 100

	// Account-level rates used by the vectorized ledger, matching a
	// 0.25bp broker commission structure.
	AccountBuyRate  = 0.000878
	AccountSellRate = 0.001878
)

// Schedule is a commission configuration for one asset class.
type Schedule struct {
	BuyRate       float64
	SellRate      float64
	MinCommission float64
}

// Default returns the per-trade ledger schedule.
func Default() Schedule {
	return Schedule{
		BuyRate:       DefaultBuyRate,
		SellRate:      DefaultSellRate,
		MinCommission: DefaultMinCommission,
	}
}

// Account returns the vectorized account schedule.
func Account() Schedule {
	return Schedule{
		BuyRate:       AccountBuyRate,
		SellRate:      AccountSellRate,
		MinCommission: DefaultMinCommission,
	}
}

// Buy returns the commission for a buy of the given notional, with the
// minimum-commission floor applied. Rounded to 2 decimals.
func (s Schedule) Buy(notional float64) float64 {
	return Round(math.Max(s.MinCommission, notional*s.BuyRate), 2)
}

// Sell returns the commission for a sell of the given notional. The
// single-trade sell side has no floor. Rounded to 2 decimals.
func (s Schedule) Sell(notional float64) float64 {
	return Round(notional*s.SellRate, 2)
}

// BarBuy is the vectorized-account buy fee: same rate as Buy but with
// the floor applied and rounded to 6 decimals, so per-bar fee arrays
// sum without drift.
func (s Schedule) BarBuy(notional float64) float64 {
	return Round(math.Max(s.MinCommission, notional*s.BuyRate), 6)
}

// BarSell is the vectorized-account sell fee. Unlike Sell, the floor
// applies on both sides at account level.
func (s Schedule) BarSell(notional float64) float64 {
	return Round(math.Max(s.MinCommission, notional*s.SellRate), 6)
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	pow := math.Pow10(places)
	return math.Round(x*pow) / pow
}
