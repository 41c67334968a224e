// Package market answers the only questions the simulation asks of
// historical data: did this order trade on this day, at what price, and
// did a corporate action change the share count.
//
// Fills are decided from unadjusted OHLC bars; the adjustment factor is
// only consulted for split/dividend detection. A non-fill is an
// ordinary outcome (suspension, limit lock, unmarketable bid), never an
// error.
package market

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DefaultLimitPct is the percent-change threshold above which a
// zero-range bar is treated as limit-locked. Set just under the 10%
// A-share daily band to tolerate rounding in the reported change.
const DefaultLimitPct = 9.9

type Market struct {
	Codes []string
	// Dates is the trading calendar: every date the simulation steps
	// through, sorted ascending.
	Dates []string
	// LimitPct is the limit-lock detection threshold in percent.
	LimitPct float64

	histories map[string]*History
}

// New assembles a market from per-code histories. The calendar is the
// union of all trading dates seen; codes suspended on a calendar date
// simply have no bar for it.
func New(histories map[string]*History, limitPct float64) *Market {
	if limitPct <= 0 {
		limitPct = DefaultLimitPct
	}

	m := &Market{
		LimitPct:  limitPct,
		histories: histories,
	}

	seen := map[string]struct{}{}
	for code, h := range histories {
		m.Codes = append(m.Codes, code)
		for _, d := range h.Dates {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				m.Dates = append(m.Dates, d)
			}
		}
	}
	sort.Strings(m.Codes)
	sort.Strings(m.Dates)
	return m
}

// Load reads <dataDir>/<code>.csv for each code and assembles a market
// over [start, end].
func Load(dataDir string, codes []string, start, end string, limitPct float64) (*Market, error) {
	histories := make(map[string]*History, len(codes))
	for _, code := range codes {
		h, err := LoadHistory(code, filepath.Join(dataDir, code+".csv"), start, end)
		if err != nil {
			return nil, err
		}
		histories[code] = h
	}
	return New(histories, limitPct), nil
}

func (m *Market) History(code string) (*History, bool) {
	h, ok := m.histories[code]
	return h, ok
}

// IsSuspended reports whether code has no bar for date.
func (m *Market) IsSuspended(code, date string) bool {
	h, ok := m.histories[code]
	if !ok {
		return true
	}
	_, ok = h.Bar(date)
	return !ok
}

// BuyCheck decides whether a buy bid fills on the given date.
//
// No fill when the code is suspended, when the bar is limit-up locked,
// or when the bid never reaches the traded range (bid < low). Bids
// above the day's high fill at the high.
func (m *Market) BuyCheck(code, date string, bidPrice float64) (bool, float64) {
	if m.IsSuspended(code, date) {
		return false, 0
	}
	b, _ := m.histories[code].Bar(date)
	if b.Locked() && b.PctChg > m.LimitPct {
		return false, 0
	}
	if bidPrice < b.Low {
		return false, 0
	}
	if bidPrice < b.High {
		return true, bidPrice
	}
	return true, b.High
}

// SellCheck decides whether a sell ask fills on the given date.
//
// No fill when suspended, limit-down locked, or the ask is above the
// day's high. Asks below the day's low still fill, at the low: a
// marketable sell clears at the worst realized price. This is
// deliberately not symmetric with BuyCheck's below-low rejection.
func (m *Market) SellCheck(code, date string, bidPrice float64) (bool, float64) {
	if m.IsSuspended(code, date) {
		return false, 0
	}
	b, _ := m.histories[code].Bar(date)
	if b.Locked() && b.PctChg < -m.LimitPct {
		return false, 0
	}
	if bidPrice > b.High {
		return false, 0
	}
	if bidPrice > b.Low {
		return true, bidPrice
	}
	return true, b.Low
}

// ClosePrice returns the close on date, carrying forward the last
// traded close when the code is suspended.
func (m *Market) ClosePrice(code, date string) (float64, error) {
	h, ok := m.histories[code]
	if !ok {
		return 0, fmt.Errorf("market: unknown code %q", code)
	}
	if b, ok := h.Bar(date); ok {
		return b.Close, nil
	}
	b, ok := h.LastBefore(date)
	if !ok {
		return 0, fmt.Errorf("market: no close for %s on or before %s", code, date)
	}
	return b.Close, nil
}

// PreClosePrice returns the previous close as of date, carried forward
// over suspensions.
func (m *Market) PreClosePrice(code, date string) (float64, error) {
	h, ok := m.histories[code]
	if !ok {
		return 0, fmt.Errorf("market: unknown code %q", code)
	}
	if b, ok := h.Bar(date); ok {
		return b.PreClose, nil
	}
	b, ok := h.LastBefore(date)
	if !ok {
		return 0, fmt.Errorf("market: no pre-close for %s on or before %s", code, date)
	}
	return b.PreClose, nil
}

// AdjFactor returns the adjustment factor on date. A suspended code
// keeps the factor from its last traded date rather than going missing.
func (m *Market) AdjFactor(code, date string) (float64, error) {
	h, ok := m.histories[code]
	if !ok {
		return 0, fmt.Errorf("market: unknown code %q", code)
	}
	if b, ok := h.Bar(date); ok {
		return b.AdjFactor, nil
	}
	return m.PreAdjFactor(code, date)
}

// PreAdjFactor returns the adjustment factor of the last traded date
// strictly before date.
func (m *Market) PreAdjFactor(code, date string) (float64, error) {
	h, ok := m.histories[code]
	if !ok {
		return 0, fmt.Errorf("market: unknown code %q", code)
	}
	b, ok := h.LastBefore(date)
	if !ok {
		return 0, fmt.Errorf("market: no adj factor for %s before %s", code, date)
	}
	return b.AdjFactor, nil
}

// DivideRate is the ratio of today's adjustment factor to the previous
// trading date's. A ratio meaningfully above 1 signals a split or
// dividend that scaled the share count. On the first date with no prior
// history it is 1 (no action detectable).
func (m *Market) DivideRate(code, date string) (float64, error) {
	pre, err := m.PreAdjFactor(code, date)
	if err != nil {
		return 1.0, nil
	}
	cur, err := m.AdjFactor(code, date)
	if err != nil {
		return 0, err
	}
	if pre == 0 {
		return 0, fmt.Errorf("market: zero adj factor for %s before %s", code, date)
	}
	return cur / pre, nil
}
