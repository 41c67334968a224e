// Package backtest drives the simulation loop: a strategy emits action
// vectors, the allocation policy turns them into trade intents, the
// market decides fills, and a ledger or account books the result. Two
// runners share the Result type: Runner keeps one ledger per code,
// VectorRunner drives the vectorized account.
package backtest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/stocksim/alloc"
	"github.com/rustyeddy/stocksim/internal/id"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/ledger"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/strategies"
)

// Runner walks the trading calendar with one Portfolio per code.
type Runner struct {
	Market   *market.Market
	Policy   alloc.Policy
	Strategy strategies.Strategy

	// Journal receives fills and end-of-day equity. Nil discards.
	Journal journal.Journal

	Investment float64

	// LedgerOptions are applied to every portfolio (fee schedule, lot
	// size, logger).
	LedgerOptions []ledger.Option

	Log *zap.Logger
}

// Run executes the loop over every date in the market's calendar:
//
//  1. refresh divide rates and unfreeze positions
//  2. ask the strategy for an action vector (nil means hold)
//  3. sells first, then buys, each gated by the market's fill checks
//  4. mark every position to the close and snapshot equity
//
// Errors from the policy or the market abort the run; a non-fill is
// not an error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Market == nil {
		return Result{}, fmt.Errorf("backtest: Market is required")
	}
	if r.Policy == nil {
		return Result{}, fmt.Errorf("backtest: Policy is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Investment <= 0 {
		return Result{}, fmt.Errorf("backtest: Investment must be positive")
	}
	dates := r.Market.Dates
	if len(dates) == 0 {
		return Result{}, fmt.Errorf("backtest: market has no trading dates")
	}

	jnl := r.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	codes := r.Market.Codes
	ports := make([]*ledger.Portfolio, len(codes))
	for i, code := range codes {
		ports[i] = ledger.New(code, r.LedgerOptions...)
	}

	runID := id.New()
	cash := r.Investment
	preValue := r.Investment
	peak := r.Investment
	maxDD := 0.0
	fills := 0

	for idx, date := range dates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		for i, code := range codes {
			rate, err := r.Market.DivideRate(code, date)
			if err != nil {
				return Result{}, err
			}
			ports[i].UpdateBeforeTrade(rate)
		}

		dayCash := make([]float64, len(codes))

		if action := r.Strategy.Actions(r.Market, idx, date); action != nil {
			preCloses := make([]float64, len(codes))
			for i, code := range codes {
				pc, err := r.Market.PreClosePrice(code, date)
				if err != nil {
					return Result{}, err
				}
				preCloses[i] = pc
			}
			intents, err := r.Policy.Intents(action, preCloses)
			if err != nil {
				return Result{}, err
			}

			// Sells clear first so the freed cash can fund the buys.
			for i, code := range codes {
				it := intents[i]
				p := ports[i]
				if it.SellPercent > 0 &&
					preValue*it.SellPercent >= float64(p.Volume)*p.LastPrice() {
					continue
				}
				ok, price := r.Market.SellCheck(code, date, it.SellPrice)
				if !ok {
					continue
				}
				fill, err := p.OrderTargetPercent(it.SellPercent, price, preValue, cash)
				if err != nil {
					return Result{}, err
				}
				cash += fill.CashChange
				dayCash[i] += fill.CashChange
				if fill.Volume > 0 {
					fills++
					if err := jnl.RecordFill(fillRecord(runID, date, fill)); err != nil {
						return Result{}, err
					}
				}
			}

			for i, code := range codes {
				it := intents[i]
				p := ports[i]
				if preValue*it.BuyPercent <= float64(p.Volume)*p.LastPrice() {
					continue
				}
				ok, price := r.Market.BuyCheck(code, date, it.BuyPrice)
				if !ok {
					continue
				}
				fill, err := p.OrderTargetPercent(it.BuyPercent, price, preValue, cash)
				if err != nil {
					return Result{}, err
				}
				cash += fill.CashChange
				dayCash[i] += fill.CashChange
				if fill.Volume > 0 {
					fills++
					if err := jnl.RecordFill(fillRecord(runID, date, fill)); err != nil {
						return Result{}, err
					}
				}
			}
		}

		total := cash
		dayFee := 0.0
		for i, code := range codes {
			cl, err := r.Market.ClosePrice(code, date)
			if err != nil {
				return Result{}, err
			}
			ports[i].UpdateAfterTrade(cl, dayCash[i], preValue)
			total += ports[i].MarketValue
			dayFee += ports[i].TransactionCost
		}
		for _, p := range ports {
			p.UpdateValuePercent(total)
		}

		if err := jnl.RecordEquity(journal.EquitySnapshot{
			RunID:       runID,
			Date:        date,
			TotalAssets: total,
			Balance:     cash,
			Available:   cash,
			Value:       total / r.Investment,
			DayPnL:      total - preValue,
			DayFee:      dayFee,
		}); err != nil {
			return Result{}, err
		}

		log.Debug("day settled",
			zap.String("date", date),
			zap.Float64("total", total),
			zap.Float64("cash", cash))

		if total > peak {
			peak = total
		}
		if dd := (peak - total) / peak; dd > maxDD {
			maxDD = dd
		}
		preValue = total
	}

	final := preValue / r.Investment
	return Result{
		RunID:       runID,
		Start:       dates[0],
		End:         dates[len(dates)-1],
		DayCount:    len(dates),
		Fills:       fills,
		FinalValue:  final,
		TotalReturn: final - 1.0,
		MaxDrawdown: maxDD,
	}, nil
}

// fillRecord derives the journal row, backing the fee out of the cash
// change.
func fillRecord(runID, date string, f ledger.Fill) journal.FillRecord {
	notional := f.Price * float64(f.Volume)
	var fee float64
	if f.Side == ledger.SideBuy {
		fee = -f.CashChange - notional
	} else {
		fee = notional - f.CashChange
	}
	return journal.FillRecord{
		ID:         id.New(),
		RunID:      runID,
		Date:       date,
		Side:       string(f.Side),
		Code:       f.Code,
		Volume:     float64(f.Volume),
		Price:      f.Price,
		CashChange: f.CashChange,
		Fee:        fee,
	}
}
