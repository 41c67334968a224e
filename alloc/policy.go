// Package alloc maps strategy action vectors to concrete trade
// intents: a sell price, a buy price, and target allocation percents
// per instrument.
//
// The three policies cover the classic environment variants — one
// instrument traded at full size, equal-weight baskets, and free
// per-instrument weights — as one interface selected by configuration
// instead of a type hierarchy.
package alloc

import (
	"fmt"

	"github.com/rustyeddy/stocksim/fees"
)

// priceBand scales an action value in [-1, 1] to a price offset of at
// most ±10% from the previous close.
const priceBand = 0.1

// Intent is the per-instrument outcome of a policy: bid prices for the
// two sides and the allocation targets to move toward.
type Intent struct {
	SellPrice   float64
	BuyPrice    float64
	SellPercent float64
	BuyPercent  float64
}

// Policy turns an action vector into per-instrument intents.
// Action values are expected in [-1, 1].
type Policy interface {
	Name() string
	// ActionSize is the action vector length for n instruments.
	ActionSize(n int) int
	// Intents derives one intent per instrument. preCloses holds the
	// previous close per instrument, same order as the action slots.
	Intents(action, preCloses []float64) ([]Intent, error)
}

// ByName returns the policy registered under name.
func ByName(name string) (Policy, error) {
	switch name {
	case "single":
		return Single{}, nil
	case "equal":
		return EqualWeight{}, nil
	case "free":
		return FreeWeight{}, nil
	}
	return nil, fmt.Errorf("alloc: unknown policy %q", name)
}

// actionPrice converts an action value to a bid price around preClose,
// rounded to the cent like exchange quotes.
func actionPrice(v, preClose float64) float64 {
	return fees.Round(preClose*(1+v*priceBand), 2)
}

// actionPercent converts an action value in [-1, 1] to a target
// allocation in [0, 1].
func actionPercent(v float64) float64 {
	return v*0.5 + 0.5
}

// Single trades one instrument at full size: action [vSell, vBuy],
// sell everything at the sell price, then go all-in at the buy price.
type Single struct{}

func (Single) Name() string         { return "single" }
func (Single) ActionSize(n int) int { return 2 }

func (Single) Intents(action, preCloses []float64) ([]Intent, error) {
	if len(action) != 2 || len(preCloses) != 1 {
		return nil, fmt.Errorf("alloc: single policy wants 2 action values and 1 pre-close")
	}
	return []Intent{{
		SellPrice:   actionPrice(action[0], preCloses[0]),
		BuyPrice:    actionPrice(action[1], preCloses[0]),
		SellPercent: 0,
		BuyPercent:  1.0,
	}}, nil
}

// EqualWeight trades a basket at 1/n weight each: action
// [vSell, vBuy] per instrument.
type EqualWeight struct{}

func (EqualWeight) Name() string         { return "equal" }
func (EqualWeight) ActionSize(n int) int { return 2 * n }

func (EqualWeight) Intents(action, preCloses []float64) ([]Intent, error) {
	n := len(preCloses)
	if len(action) != 2*n {
		return nil, fmt.Errorf("alloc: equal policy wants %d action values, got %d", 2*n, len(action))
	}
	avg := 1.0 / float64(n)
	intents := make([]Intent, n)
	for i := 0; i < n; i++ {
		intents[i] = Intent{
			SellPrice:   actionPrice(action[2*i], preCloses[i]),
			BuyPrice:    actionPrice(action[2*i+1], preCloses[i]),
			SellPercent: 0,
			BuyPercent:  avg,
		}
	}
	return intents, nil
}

// FreeWeight trades a basket with per-instrument target weights:
// action [vSellPrice, vSellPct, vBuyPrice, vBuyPct] per instrument.
type FreeWeight struct{}

func (FreeWeight) Name() string         { return "free" }
func (FreeWeight) ActionSize(n int) int { return 4 * n }

func (FreeWeight) Intents(action, preCloses []float64) ([]Intent, error) {
	n := len(preCloses)
	if len(action) != 4*n {
		return nil, fmt.Errorf("alloc: free policy wants %d action values, got %d", 4*n, len(action))
	}
	intents := make([]Intent, n)
	for i := 0; i < n; i++ {
		a := action[4*i : 4*i+4]
		intents[i] = Intent{
			SellPrice:   actionPrice(a[0], preCloses[i]),
			SellPercent: actionPercent(a[1]),
			BuyPrice:    actionPrice(a[2], preCloses[i]),
			BuyPercent:  actionPercent(a[3]),
		}
	}
	return intents, nil
}
