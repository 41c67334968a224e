package backtest

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rustyeddy/stocksim/account"
	"github.com/rustyeddy/stocksim/internal/id"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/market"
)

// VolumeSource yields one order vector per trading date for the
// vectorized account: positive buys, negative sells, in shares, one
// slot per code plus the cash slot. A nil vector means hold.
type VolumeSource interface {
	Name() string
	Volumes(a *account.Account, bar account.Bar, dateIdx int) []float64
}

// VectorRunner walks the trading calendar with one vectorized account.
// Each date becomes one bar: orders match at the opens and the account
// settles against the closes. Suspended legs have their orders zeroed
// and their prices carried forward from the last traded close.
type VectorRunner struct {
	Market  *market.Market
	Account *account.Account
	Source  VolumeSource

	Journal journal.Journal
	Log     *zap.Logger
}

func (r *VectorRunner) Run(ctx context.Context) (Result, error) {
	if r.Market == nil {
		return Result{}, fmt.Errorf("backtest: Market is required")
	}
	if r.Account == nil {
		return Result{}, fmt.Errorf("backtest: Account is required")
	}
	if r.Source == nil {
		return Result{}, fmt.Errorf("backtest: Source is required")
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

	n := r.Account.N()
	codes := r.Account.Codes[:n-1]

	runID := id.New()
	peak := r.Account.TotalAssets
	maxDD := 0.0
	fills := 0

	for idx, date := range dates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		bar := account.Bar{
			PreDayCloses: make([]float64, n),
			Opens:        make([]float64, n),
			Closes:       make([]float64, n),
		}
		for i, code := range codes {
			pc, err := r.Market.PreClosePrice(code, date)
			if err != nil {
				return Result{}, err
			}
			cl, err := r.Market.ClosePrice(code, date)
			if err != nil {
				return Result{}, err
			}
			bar.PreDayCloses[i] = pc
			bar.Closes[i] = cl
			bar.Opens[i] = cl
			if h, ok := r.Market.History(code); ok {
				if b, ok := h.Bar(date); ok {
					bar.Opens[i] = b.Open
				}
			}
		}
		bar.PreDayCloses[n-1] = account.CashPrice
		bar.Opens[n-1] = account.CashPrice
		bar.Closes[n-1] = account.CashPrice

		volumes := r.Source.Volumes(r.Account, bar, idx)
		if volumes == nil {
			volumes = make([]float64, n)
		}
		if len(volumes) != n {
			return Result{}, fmt.Errorf("backtest: source gave %d volumes, want %d",
				len(volumes), n)
		}
		for i, code := range codes {
			if volumes[i] != 0 && r.Market.IsSuspended(code, date) {
				volumes[i] = 0
			}
		}

		if err := r.Account.BarExecute(volumes, bar, 0); err != nil {
			return Result{}, err
		}

		for i, code := range codes {
			if volumes[i] == 0 {
				continue
			}
			fills++
			side := "buy"
			if volumes[i] < 0 {
				side = "sell"
			}
			if err := jnl.RecordFill(journal.FillRecord{
				ID:         id.New(),
				RunID:      runID,
				Date:       date,
				Side:       side,
				Code:       code,
				Volume:     math.Abs(volumes[i]),
				Price:      bar.Opens[i],
				CashChange: r.Account.BarCashChanges[i],
				Fee:        r.Account.DayFees[i],
			}); err != nil {
				return Result{}, err
			}
		}

		if err := jnl.RecordEquity(journal.EquitySnapshot{
			RunID:       runID,
			Date:        date,
			TotalAssets: r.Account.TotalAssets,
			Balance:     r.Account.Balance,
			Available:   r.Account.Available,
			Value:       r.Account.Value,
			DayPnL:      r.Account.DayPnL,
			DayFee:      r.Account.DayFee,
		}); err != nil {
			return Result{}, err
		}

		log.Debug("bar settled",
			zap.String("date", date),
			zap.Float64("total", r.Account.TotalAssets),
			zap.Float64("value", r.Account.Value))

		if r.Account.TotalAssets > peak {
			peak = r.Account.TotalAssets
		}
		if dd := (peak - r.Account.TotalAssets) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return Result{
		RunID:       runID,
		Start:       dates[0],
		End:         dates[len(dates)-1],
		DayCount:    len(dates),
		Fills:       fills,
		FinalValue:  r.Account.Value,
		TotalReturn: r.Account.Value - 1.0,
		MaxDrawdown: maxDD,
	}, nil
}

// TargetVolumes sizes an order vector that moves the account toward
// the given per-code weights at the bar's opens; the remaining weight
// stays in cash. Current holdings are re-derived from caps at the
// pre-day closes, the same way DayInit does, so the vector is valid
// for the first bar of a day.
func TargetVolumes(a *account.Account, bar account.Bar, weights []float64) []float64 {
	n := a.N()
	v := make([]float64, n)
	for i := 0; i < n-1 && i < len(weights); i++ {
		if bar.Opens[i] <= 0 || bar.PreDayCloses[i] <= 0 {
			continue
		}
		cur := a.Caps[i] / bar.PreDayCloses[i]
		v[i] = a.TotalAssets*weights[i]/bar.Opens[i] - cur
	}
	return v
}
