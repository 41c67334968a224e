// Package ledger tracks a single instrument's position lifecycle:
// volume with the T+1 frozen/sellable split, average cost basis,
// realized and daily P&L, and order sizing against a cash budget.
//
// The ledger trusts its caller on tradability: fills should already
// have passed the market's buy/sell checks, and Sell does not clamp to
// the sellable volume. OrderValue and OrderTargetPercent are the
// self-limiting entry points.
package ledger

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/stocksim/fees"
)

// ErrInvalidPercent is returned by OrderTargetPercent for targets
// outside [0, 1].
var ErrInvalidPercent = errors.New("ledger: target percent must be between 0 and 1")

// DefaultDivideRateThreshold separates real split/dividend ratios from
// floating noise on a ratio that should be exactly 1.0.
const DefaultDivideRateThreshold = 1.005

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Fill describes one executed order. A zero-volume Fill means the order
// produced no trade.
type Fill struct {
	Side       Side
	Code       string
	CashChange float64
	Price      float64
	Volume     int64
}

// Portfolio is the per-instrument ledger.
type Portfolio struct {
	Code string

	// Position
	Volume       int64
	PreVolume    int64
	FrozenVolume int64
	// Sellable is the T+1 sellable volume: everything held at the start
	// of the cycle, minus what has been sold since.
	Sellable    int64
	AvgPrice    float64
	MarketValue float64

	// P&L, daily and cumulative
	DailyPnL           float64
	PnL                float64
	DailyReturn        float64
	TransactionCost    float64
	AllTransactionCost float64
	// ValuePercent is this position's share of total portfolio value.
	ValuePercent float64

	Fees                fees.Schedule
	RoundLot            int64
	DivideRateThreshold float64

	lastPrice float64
	log       *zap.Logger
}

// Option configures a Portfolio.
type Option func(*Portfolio)

// WithFees overrides the commission schedule.
func WithFees(s fees.Schedule) Option {
	return func(p *Portfolio) { p.Fees = s }
}

// WithRoundLot overrides the lot size.
func WithRoundLot(lot int64) Option {
	return func(p *Portfolio) { p.RoundLot = lot }
}

// WithDivideRateThreshold overrides the split-detection threshold.
func WithDivideRateThreshold(th float64) Option {
	return func(p *Portfolio) { p.DivideRateThreshold = th }
}

// WithLogger attaches a deal logger. Without it the ledger is silent.
func WithLogger(l *zap.Logger) Option {
	return func(p *Portfolio) { p.log = l }
}

func New(code string, opts ...Option) *Portfolio {
	p := &Portfolio{
		Code:                code,
		Fees:                fees.Default(),
		RoundLot:            fees.DefaultRoundLot,
		DivideRateThreshold: DefaultDivideRateThreshold,
		log:                 zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Buy executes a buy fill. Bought shares are frozen until the next
// cycle. Returns the fill with CashChange = -(notional + fee).
func (p *Portfolio) Buy(price float64, volume int64) Fill {
	amount := price * float64(volume)
	cost := p.Fees.Buy(amount)
	p.TransactionCost += cost
	p.AllTransactionCost += cost

	p.AvgPrice = (p.AvgPrice*float64(p.Volume) + amount + cost) / float64(p.Volume+volume)
	p.lastPrice = price
	p.Volume += volume
	p.FrozenVolume += volume

	if volume > 0 {
		p.log.Debug("buy",
			zap.String("code", p.Code),
			zap.Float64("price", price),
			zap.Int64("volume", volume))
	}

	return Fill{
		Side:       SideBuy,
		Code:       p.Code,
		CashChange: -amount - cost,
		Price:      price,
		Volume:     volume,
	}
}

// Sell executes a sell fill. The caller must ensure volume <= Sellable.
// Selling the entire holding resets the cost basis to zero.
func (p *Portfolio) Sell(price float64, volume int64) Fill {
	amount := price * float64(volume)
	cost := p.Fees.Sell(amount)

	if p.Volume == volume {
		p.AvgPrice = 0
	} else {
		p.AvgPrice = (p.AvgPrice*float64(p.Volume) - amount + cost) / float64(p.Volume-volume)
	}
	p.lastPrice = price
	p.TransactionCost += cost
	p.AllTransactionCost += cost
	p.Volume -= volume
	p.Sellable -= volume

	if volume > 0 {
		p.log.Debug("sell",
			zap.String("code", p.Code),
			zap.Float64("price", price),
			zap.Int64("volume", volume))
	}

	return Fill{
		Side:       SideSell,
		Code:       p.Code,
		CashChange: amount - cost,
		Price:      price,
		Volume:     volume,
	}
}

// IsDivide reports whether divideRate signals a corporate action rather
// than floating noise around 1.0.
func (p *Portfolio) IsDivide(divideRate float64) bool {
	return divideRate > p.DivideRateThreshold
}

// UpdateBeforeTrade starts a new cycle. It applies a split by scaling
// the share count, then resets the daily accumulators and unfreezes the
// position. Must run exactly once per bar before any trade.
func (p *Portfolio) UpdateBeforeTrade(divideRate float64) {
	if p.IsDivide(divideRate) {
		p.log.Debug("split adjustment",
			zap.String("code", p.Code),
			zap.Float64("divide_rate", divideRate))
		p.Volume = int64(divideRate * float64(p.Volume))
	}
	p.Sellable = p.Volume
	p.FrozenVolume = 0
	p.DailyPnL = 0
	p.DailyReturn = 0
	p.TransactionCost = 0
	p.PreVolume = p.Volume
}

// UpdateAfterTrade marks the position to the close and books the day's
// P&L. prePortfolioValue is the previous cycle's total portfolio value;
// a zero baseline (the very first bar) yields a zero return.
func (p *Portfolio) UpdateAfterTrade(closePrice, cashChange, prePortfolioValue float64) {
	preMarketValue := p.MarketValue
	p.MarketValue = float64(p.Volume) * closePrice
	p.DailyPnL = p.MarketValue - preMarketValue + cashChange
	p.PnL += p.DailyPnL

	if prePortfolioValue == 0 {
		p.DailyReturn = 0
	} else {
		p.DailyReturn = p.DailyPnL / prePortfolioValue
	}
}

// UpdateValuePercent refreshes this position's share of totalValue.
func (p *Portfolio) UpdateValuePercent(totalValue float64) {
	if totalValue == 0 {
		p.ValuePercent = 0
	} else {
		p.ValuePercent = p.MarketValue / totalValue
	}
}

// OrderValue trades by cash amount rather than share count: a positive
// amount is the budget to spend buying (fees included), a negative
// amount the value to raise by selling. Volumes are rounded down to the
// lot size; buys shrink lot by lot until notional plus fee fits the
// cash on hand, sells clamp to the sellable volume. A zero-volume fill
// means no order was worth sending.
func (p *Portfolio) OrderValue(amount, price, currentCash float64) Fill {
	switch {
	case amount > 0:
		if amount > currentCash {
			amount = currentCash
		}
		lot := float64(p.RoundLot)
		volume := int64(amount/(price*lot)) * p.RoundLot
		for volume > 0 {
			notional := float64(volume) * price
			if notional+p.Fees.Buy(notional) <= currentCash {
				break
			}
			volume -= p.RoundLot
		}
		if volume <= 0 {
			p.log.Debug("order_value rejected: zero buy quantity",
				zap.String("code", p.Code))
			return Fill{Side: SideBuy, Code: p.Code, Price: price}
		}
		return p.Buy(price, volume)

	case amount < 0:
		lot := float64(p.RoundLot)
		volume := -int64(amount/(price*lot)) * p.RoundLot
		if volume > p.Sellable {
			volume = p.Sellable
		}
		return p.Sell(price, volume)
	}
	return Fill{Code: p.Code, Price: price}
}

// OrderTargetPercent adjusts the position toward percent of the
// previous cycle's portfolio value. percent 0 liquidates the sellable
// volume. The previous value is a deliberate baseline: intra-cycle
// marks are not consulted.
func (p *Portfolio) OrderTargetPercent(percent, price, prePortfolioValue, currentCash float64) (Fill, error) {
	if percent < 0 || percent > 1 {
		return Fill{}, fmt.Errorf("%w: got %v", ErrInvalidPercent, percent)
	}
	if percent == 0 {
		if p.Sellable == 0 {
			p.log.Debug("sell all: nothing sellable", zap.String("code", p.Code))
		}
		return p.Sell(price, p.Sellable), nil
	}

	adjust := prePortfolioValue*percent - float64(p.Volume)*p.lastPrice
	return p.OrderValue(adjust, price, currentCash), nil
}

// LastPrice is the price of the most recent fill.
func (p *Portfolio) LastPrice() float64 { return p.lastPrice }
