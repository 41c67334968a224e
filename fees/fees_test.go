package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuyAppliesMinimum(t *testing.T) {
	t.Parallel()

	s := Default()

	tests := []struct {
		name     string
		notional float64
		want     float64
	}{
		{"below floor", 1000, 5.0},   // 1000*0.001 = 1 < 5
		{"at floor", 5000, 5.0},      // exactly the floor
		{"above floor", 10000, 10.0}, // 10000*0.001 = 10
		{"zero", 0, 5.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, s.Buy(tt.notional), 1e-9)
		})
	}
}

func TestSellHasNoFloor(t *testing.T) {
	t.Parallel()

	s := Default()

	assert.InDelta(t, 1.5, s.Sell(1000), 1e-9)
	assert.InDelta(t, 15.0, s.Sell(10000), 1e-9)
	assert.InDelta(t, 0.0, s.Sell(0), 1e-9)
}

func TestBarFeesFloorBothSides(t *testing.T) {
	t.Parallel()

	s := Account()

	// 5000 * 0.000878 = 4.39 < 5.0 floor
	assert.InDelta(t, 5.0, s.BarBuy(5000), 1e-9)
	// 60600 * 0.000878 = 53.2068
	assert.InDelta(t, 53.2068, s.BarBuy(60600), 1e-6)
	// 51000 * 0.001878 = 95.778
	assert.InDelta(t, 95.778, s.BarSell(51000), 1e-6)
	// small sell still pays the floor at account level
	assert.InDelta(t, 5.0, s.BarSell(100), 1e-9)
}

func TestRound(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.23, Round(1.23456, 2), 1e-12)
	assert.InDelta(t, 1.234568, Round(1.23456789, 6), 1e-12)
	assert.InDelta(t, -1.24, Round(-1.235, 2), 1e-12)
}
