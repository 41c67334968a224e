package strategies

import "github.com/rustyeddy/stocksim/market"

// BuyAndHold bids each code at its closing price on the first date
// (the action value is derived from the day's percent change, so the
// bid lands on the close) and holds afterwards. Emits [vSell, vBuy]
// per code, the layout of the single and equal-weight policies.
type BuyAndHold struct {
	Codes []string
}

func (BuyAndHold) Name() string { return "buy_and_hold" }

func (s BuyAndHold) Actions(m *market.Market, dateIdx int, date string) []float64 {
	if dateIdx > 0 {
		return nil
	}

	action := make([]float64, 0, 2*len(s.Codes))
	for _, code := range s.Codes {
		buy := 0.0
		if h, ok := m.History(code); ok {
			if b, ok := h.Bar(date); ok {
				buy = pctToAction(b.PctChg)
			}
		}
		// Sell side stays at yesterday's close with nothing to sell.
		action = append(action, 0, buy)
	}
	return action
}
