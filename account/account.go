// Package account is the vectorized multi-instrument ledger: N stock
// legs plus one cash leg, updated in whole-array passes once per bar.
//
// Per trading day the lifecycle is
//
//	BarExecute(volumes, bar, 0)   // bar 0 runs DayInit
//	BarExecute(volumes, bar, k)   // further intra-day bars
//
// and each BarExecute settles against the bar's closes. Precondition
// violations (oversell, insufficient funds, negative cash) are returned
// as typed errors before any state mutates; the settlement cross-check
// is a panic, because it can only fail on an internal accounting bug.
package account

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rustyeddy/stocksim/fees"
)

// The cash leg is modeled as one more instrument whose price is pinned
// at CashPrice, so one share of it is one unit of currency.
const (
	CashCode  = "CASH"
	CashPrice = 1.0
)

// consistencyTol bounds the disagreement allowed between the two
// independent bar P&L computations (6 decimal places).
const consistencyTol = 1e-6

// Bar carries the per-bar price arrays, each of length n+1 with the
// cash leg last.
type Bar struct {
	PreDayCloses []float64
	Opens        []float64
	Closes       []float64
}

// Account is the vectorized ledger. All arrays have length n = number
// of codes + 1, indexed by code order with the cash leg last.
type Account struct {
	Codes []string
	n     int

	Investment        float64
	TotalAssets       float64
	PreDayTotalAssets float64
	Balance           float64
	Available         float64

	Caps            []float64
	Prices          []float64
	Volumes         []float64
	FrozenVolumes   []float64
	SellableVolumes []float64
	Weights         []float64

	BarCashChanges []float64
	DayCashChanges []float64

	BarPnL  float64
	BarPnLs []float64
	DayPnL  float64
	DayPnLs []float64
	PnL     float64
	PnLs    []float64

	DayReturn  float64
	DayReturns []float64

	// Value is NAV relative to the initial investment, baseline 1.0.
	Value         float64
	Contributions []float64

	DayFee  float64
	DayFees []float64
	Fee     float64

	fees fees.Schedule
	log  *zap.Logger
}

// Option configures an Account.
type Option func(*Account)

// WithFees overrides the commission schedule.
func WithFees(s fees.Schedule) Option {
	return func(a *Account) { a.fees = s }
}

// WithLogger attaches a bar/day logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Account) { a.log = l }
}

// New creates an account holding only cash. codes must not include the
// cash leg; it is appended here. investment is immutable afterwards.
func New(investment float64, codes []string, opts ...Option) *Account {
	n := len(codes) + 1

	a := &Account{
		Codes:             append(append([]string{}, codes...), CashCode),
		n:                 n,
		Investment:        investment,
		TotalAssets:       investment,
		PreDayTotalAssets: investment,
		Balance:           investment,
		Available:         investment,
		Caps:              make([]float64, n),
		Prices:            make([]float64, n),
		Volumes:           make([]float64, n),
		FrozenVolumes:     make([]float64, n),
		SellableVolumes:   make([]float64, n),
		Weights:           make([]float64, n),
		BarCashChanges:    make([]float64, n),
		DayCashChanges:    make([]float64, n),
		BarPnLs:           make([]float64, n),
		DayPnLs:           make([]float64, n),
		PnLs:              make([]float64, n),
		DayReturns:        make([]float64, n),
		Value:             1.0,
		Contributions:     make([]float64, n),
		DayFees:           make([]float64, n),
		fees:              fees.Account(),
		log:               zap.NewNop(),
	}

	a.Caps[n-1] = investment
	a.Volumes[n-1] = investment
	a.Prices[n-1] = CashPrice
	a.Weights[n-1] = 1.0

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// N is the array length: instrument count plus the cash leg.
func (a *Account) N() int { return a.n }

// DayInit opens a trading day. Volumes are re-derived from caps at the
// previous day's closes, which both carries positions forward and
// applies any split (caps are the invariant, volumes the derived
// quantity). Daily accumulators reset and the whole position unfreezes.
func (a *Account) DayInit(preDayCloses []float64) error {
	if len(preDayCloses) != a.n {
		return fmt.Errorf("%w: day init wants %d pre-closes, got %d",
			ErrInvalidArgument, a.n, len(preDayCloses))
	}
	if preDayCloses[a.n-1] != CashPrice {
		return fmt.Errorf("%w: cash leg pre-close must be %v, got %v",
			ErrInvalidArgument, CashPrice, preDayCloses[a.n-1])
	}

	a.PreDayTotalAssets = a.TotalAssets
	for i := 0; i < a.n; i++ {
		a.Volumes[i] = a.Caps[i] / preDayCloses[i]
		a.SellableVolumes[i] = a.Volumes[i]
		a.FrozenVolumes[i] = 0
		a.DayPnLs[i] = 0
		a.DayReturns[i] = 0
		a.DayCashChanges[i] = 0
		a.DayFees[i] = 0
		a.BarCashChanges[i] = 0
	}
	a.DayPnL = 0
	a.DayReturn = 0
	a.DayFee = 0
	a.Available = a.Balance
	return nil
}

func (a *Account) checkMoneyVolume(volumes []float64) error {
	if volumes[a.n-1]+a.Available <= 0 {
		return fmt.Errorf("%w: cash volume %v against available %v",
			ErrNegativeCash, volumes[a.n-1], a.Available)
	}
	return nil
}

func (a *Account) checkBuyOrders(volumes, prices []float64) error {
	expected := 0.0
	for i := 0; i < a.n-1; i++ {
		if volumes[i] > 0 {
			expected += volumes[i] * prices[i]
		}
	}
	if a.Available <= expected*(1+a.fees.BuyRate) {
		return fmt.Errorf("%w: buy notional %v (plus fees) exceeds available %v",
			ErrInsufficientFunds, expected, a.Available)
	}
	return nil
}

func (a *Account) checkSellOrders(volumes []float64) error {
	for i := 0; i < a.n-1; i++ {
		if volumes[i]+a.SellableVolumes[i] < 0 {
			return fmt.Errorf("%w: %s sell %v exceeds sellable %v",
				ErrOverSell, a.Codes[i], -volumes[i], a.SellableVolumes[i])
		}
	}
	return nil
}

// BarExecute executes one order vector against a bar. volumes has one
// slot per code plus the cash slot (ignored on input): positive buys,
// negative sells, in shares, matched at the bar's opens. barID 0 opens
// the day via DayInit. The bar settles against its closes before
// returning.
//
// The whole vector is rejected with no state change if any precondition
// fails: the buy set must fit in available cash including fees, sells
// must not exceed sellable volumes, and the cash leg must stay
// positive.
func (a *Account) BarExecute(volumes []float64, bar Bar, barID int) error {
	if len(volumes) != a.n {
		return fmt.Errorf("%w: want %d volumes, got %d",
			ErrInvalidArgument, a.n, len(volumes))
	}
	if barID == 0 {
		if err := a.DayInit(bar.PreDayCloses); err != nil {
			return err
		}
	}
	if len(bar.Opens) != a.n || len(bar.Closes) != a.n {
		return fmt.Errorf("%w: bar arrays must have length %d",
			ErrInvalidArgument, a.n)
	}

	prices := bar.Opens

	if err := a.checkMoneyVolume(volumes); err != nil {
		return err
	}
	if err := a.checkBuyOrders(volumes, prices); err != nil {
		return err
	}
	if err := a.checkSellOrders(volumes); err != nil {
		return err
	}

	v := make([]float64, a.n)
	copy(v, volumes)

	// volume > 0 buys (cash out), volume < 0 sells (cash in).
	barFees := make([]float64, a.n)
	for i := 0; i < a.n-1; i++ {
		a.BarCashChanges[i] = -v[i] * prices[i]
		switch {
		case a.BarCashChanges[i] > 0:
			barFees[i] = a.fees.BarSell(a.BarCashChanges[i])
		case a.BarCashChanges[i] < 0:
			barFees[i] = a.fees.BarBuy(-a.BarCashChanges[i])
		}
		a.BarCashChanges[i] -= barFees[i]
	}

	barFee := 0.0
	for i := 0; i < a.n; i++ {
		a.DayFees[i] += barFees[i]
		barFee += barFees[i]
	}
	a.DayFee = sum(a.DayFees)
	a.Fee += barFee

	totalCashChange := 0.0
	for i := 0; i < a.n-1; i++ {
		totalCashChange += a.BarCashChanges[i]
	}
	totalCashChange = fees.Round(totalCashChange, 6)
	a.BarCashChanges[a.n-1] = totalCashChange

	a.Balance = fees.Round(a.Balance+totalCashChange, 6)
	a.Available = fees.Round(a.Available+totalCashChange, 6)
	v[a.n-1] = totalCashChange

	for i := 0; i < a.n; i++ {
		a.DayCashChanges[i] += a.BarCashChanges[i]
		a.Volumes[i] = fees.Round(a.Volumes[i]+v[i], 6)
		a.SellableVolumes[i] = fees.Round(a.SellableVolumes[i]+math.Min(v[i], 0), 6)
		a.FrozenVolumes[i] += math.Max(v[i], 0)
	}

	if math.Abs(a.Volumes[a.n-1]-a.Available) > consistencyTol {
		panic(fmt.Sprintf(
			"account: cash volume %v diverged from available %v",
			a.Volumes[a.n-1], a.Available))
	}

	return a.barSettlement(bar.Closes)
}

// barSettlement revalues every leg at the closes and books the bar's
// P&L two independent ways: as the total-assets delta, and per leg as
// cap delta plus cash flow. Disagreement beyond 6 decimals means the
// ledger itself is broken and panics.
func (a *Account) barSettlement(closes []float64) error {
	if closes[a.n-1] != CashPrice {
		return fmt.Errorf("%w: cash leg close must be %v, got %v",
			ErrInvalidArgument, CashPrice, closes[a.n-1])
	}

	copy(a.Prices, closes)

	preBarCaps := make([]float64, a.n)
	copy(preBarCaps, a.Caps)
	for i := 0; i < a.n; i++ {
		a.Caps[i] = fees.Round(a.Volumes[i]*a.Prices[i], 6)
	}

	preBarTotalAssets := a.TotalAssets
	if preBarTotalAssets <= 0 {
		panic(fmt.Sprintf("account: non-positive total assets %v", preBarTotalAssets))
	}
	a.TotalAssets = sum(a.Caps)

	a.BarPnL = fees.Round(a.TotalAssets-preBarTotalAssets, 6)
	for i := 0; i < a.n; i++ {
		a.BarPnLs[i] = fees.Round(a.Caps[i]+a.BarCashChanges[i]-preBarCaps[i], 6)
	}
	// The cash leg never has P&L of its own.
	a.BarPnLs[a.n-1] = 0

	if diff := math.Abs(a.BarPnL - fees.Round(sum(a.BarPnLs), 6)); diff > consistencyTol {
		panic(fmt.Sprintf(
			"account: bar pnl %v disagrees with per-leg sum %v",
			a.BarPnL, sum(a.BarPnLs)))
	}

	a.DayPnL += a.BarPnL
	a.PnL += a.BarPnL
	for i := 0; i < a.n; i++ {
		a.DayPnLs[i] += a.BarPnLs[i]
		a.PnLs[i] += a.BarPnLs[i]
		a.DayReturns[i] = a.DayPnLs[i] / a.PreDayTotalAssets
		a.Contributions[i] = fees.Round(a.PnLs[i]/a.Investment, 8)
		a.Weights[i] = a.Caps[i] / a.TotalAssets
	}
	a.DayReturn = a.DayPnL / a.PreDayTotalAssets
	a.Value = fees.Round(a.PnL/a.Investment+1.0, 8)

	return nil
}

// LogBar emits the per-bar summary line.
func (a *Account) LogBar(day string, barID int) {
	a.log.Info("bar",
		zap.String("day", day),
		zap.Int("bar", barID),
		zap.Float64("bar_pnl", a.BarPnL))
}

// LogDay emits the end-of-day summary line.
func (a *Account) LogDay(day string) {
	a.log.Info("day",
		zap.String("day", day),
		zap.Float64("day_pnl", a.DayPnL),
		zap.Float64("available", a.Available))
}

func sum(xs []float64) float64 {
	t := 0.0
	for _, x := range xs {
		t += x
	}
	return t
}
