package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stocksim/market"
)

func testMarket() *market.Market {
	bars := []market.Bar{
		{Date: "20190101", Open: 10, High: 10.5, Low: 9.5, Close: 10.25,
			PreClose: 10, PctChg: 2.5, AdjFactor: 1},
		{Date: "20190102", Open: 10.25, High: 10.5, Low: 10, Close: 10.3,
			PreClose: 10.25, PctChg: 0.49, AdjFactor: 1},
	}
	return market.New(map[string]*market.History{
		"AAA": market.NewHistory("AAA", bars),
	}, 0)
}

func TestBuyAndHoldFirstDayOnly(t *testing.T) {
	t.Parallel()

	m := testMarket()
	s := BuyAndHold{Codes: []string{"AAA"}}

	// Day one: buy action scaled from the day's percent change so the
	// bid lands on the close.
	action := s.Actions(m, 0, "20190101")
	require.Len(t, action, 2)
	assert.InDelta(t, 0.0, action[0], 1e-12)
	assert.InDelta(t, 0.25, action[1], 1e-12)

	// Every later day holds.
	assert.Nil(t, s.Actions(m, 1, "20190102"))
}

func TestBuyAndHoldUnknownCode(t *testing.T) {
	t.Parallel()

	m := testMarket()
	s := BuyAndHold{Codes: []string{"ZZZ"}}

	action := s.Actions(m, 0, "20190101")
	require.Len(t, action, 2)
	assert.InDelta(t, 0.0, action[1], 1e-12)
}

func TestNoopAlwaysHolds(t *testing.T) {
	t.Parallel()

	m := testMarket()
	s := Noop{}

	assert.Nil(t, s.Actions(m, 0, "20190101"))
	assert.Nil(t, s.Actions(m, 1, "20190102"))
	assert.Equal(t, "noop", s.Name())
}
