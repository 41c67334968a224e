package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stocksim/account"
	"github.com/rustyeddy/stocksim/market"
)

// funcSource adapts a closure to the VolumeSource interface.
type funcSource struct {
	fn func(a *account.Account, bar account.Bar, idx int) []float64
}

func (funcSource) Name() string { return "func" }

func (s funcSource) Volumes(a *account.Account, bar account.Bar, idx int) []float64 {
	return s.fn(a, bar, idx)
}

func twoCodeMarket() *market.Market {
	a := []market.Bar{
		barDay("20190101", 10, 11, 9, 10, 10, 0),
		barDay("20190102", 10, 11, 9, 10, 10, 0),
	}
	b := []market.Bar{
		barDay("20190101", 20, 21, 19, 20, 20, 0),
		barDay("20190102", 20, 21, 19, 20, 20, 0),
	}
	return market.New(map[string]*market.History{
		"A": market.NewHistory("A", a),
		"B": market.NewHistory("B", b),
	}, 0)
}

func TestVectorRunnerTargetWeights(t *testing.T) {
	t.Parallel()

	acct := account.New(100000, []string{"A", "B"})
	j := &captureJournal{}
	r := &VectorRunner{
		Market:  twoCodeMarket(),
		Account: acct,
		Journal: j,
		Source: funcSource{fn: func(a *account.Account, bar account.Bar, idx int) []float64 {
			if idx > 0 {
				return nil
			}
			return TargetVolumes(a, bar, []float64{0.3, 0.2})
		}},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	// Day one buys 3000 A at 10 and 1000 B at 20; fees 26.34 and 17.56.
	assert.Equal(t, 2, res.Fills)
	assert.Equal(t, 2, res.DayCount)
	assert.Equal(t, "20190101", res.Start)
	assert.Equal(t, "20190102", res.End)
	assert.InDelta(t, 0.999561, res.FinalValue, 1e-9)
	assert.InDelta(t, -0.000439, res.TotalReturn, 1e-9)
	assert.InDelta(t, 0.000439, res.MaxDrawdown, 1e-9)

	assert.InDelta(t, 49956.1, acct.Balance, 1e-6)
	assert.InDelta(t, 99956.1, acct.TotalAssets, 1e-6)
	assert.InDelta(t, 3000.0, acct.Volumes[0], 1e-9)
	assert.InDelta(t, 1000.0, acct.Volumes[1], 1e-9)

	require.Len(t, j.fills, 2)
	fa := j.fills[0]
	assert.Equal(t, "buy", fa.Side)
	assert.Equal(t, "A", fa.Code)
	assert.InDelta(t, 3000.0, fa.Volume, 1e-9)
	assert.InDelta(t, 10.0, fa.Price, 1e-9)
	assert.InDelta(t, -30026.34, fa.CashChange, 1e-6)
	assert.InDelta(t, 26.34, fa.Fee, 1e-6)

	require.Len(t, j.equity, 2)
	assert.InDelta(t, -43.9, j.equity[0].DayPnL, 1e-6)
	assert.InDelta(t, 43.9, j.equity[0].DayFee, 1e-6)
	assert.InDelta(t, 0.0, j.equity[1].DayPnL, 1e-6)
}

func TestVectorRunnerSuspendedLegZeroed(t *testing.T) {
	t.Parallel()

	// B only trades on the first date; an order for it on the second
	// date must be dropped while A's still fills.
	a := []market.Bar{
		barDay("20190101", 10, 11, 9, 10, 10, 0),
		barDay("20190102", 10, 11, 9, 10, 10, 0),
	}
	b := []market.Bar{
		barDay("20190101", 20, 21, 19, 20, 20, 0),
	}
	m := market.New(map[string]*market.History{
		"A": market.NewHistory("A", a),
		"B": market.NewHistory("B", b),
	}, 0)

	acct := account.New(100000, []string{"A", "B"})
	j := &captureJournal{}
	r := &VectorRunner{
		Market:  m,
		Account: acct,
		Journal: j,
		Source: funcSource{fn: func(a *account.Account, bar account.Bar, idx int) []float64 {
			if idx != 1 {
				return nil
			}
			return []float64{1000, 500, 0}
		}},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Fills)
	require.Len(t, j.fills, 1)
	assert.Equal(t, "A", j.fills[0].Code)
	assert.InDelta(t, 1000.0, j.fills[0].Volume, 1e-9)
	assert.InDelta(t, 0.0, acct.Volumes[1], 1e-9)
	assert.InDelta(t, 100000.0-10008.78, acct.Balance, 1e-6)
}

func TestVectorRunnerValidation(t *testing.T) {
	t.Parallel()

	m := twoCodeMarket()
	acct := account.New(100000, []string{"A", "B"})
	src := funcSource{fn: func(*account.Account, account.Bar, int) []float64 { return nil }}

	tests := []struct {
		name   string
		runner *VectorRunner
	}{
		{"no market", &VectorRunner{Account: acct, Source: src}},
		{"no account", &VectorRunner{Market: m, Source: src}},
		{"no source", &VectorRunner{Market: m, Account: acct}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.runner.Run(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestVectorRunnerBadVectorLength(t *testing.T) {
	t.Parallel()

	r := &VectorRunner{
		Market:  twoCodeMarket(),
		Account: account.New(100000, []string{"A", "B"}),
		Source: funcSource{fn: func(*account.Account, account.Bar, int) []float64 {
			return []float64{1, 2}
		}},
	}
	_, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestTargetVolumes(t *testing.T) {
	t.Parallel()

	acct := account.New(100000, []string{"A", "B"})
	bar := account.Bar{
		PreDayCloses: []float64{10, 20, 1},
		Opens:        []float64{10, 20, 1},
		Closes:       []float64{10, 20, 1},
	}

	v := TargetVolumes(acct, bar, []float64{0.5, 0.25})
	require.Len(t, v, 3)
	assert.InDelta(t, 5000.0, v[0], 1e-9)
	assert.InDelta(t, 1250.0, v[1], 1e-9)
	assert.InDelta(t, 0.0, v[2], 1e-9)
}
