package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const momentumMaxWindow = 10

// Momentum emits BUY when each of the last N ticks is strictly higher than
// the one before it (a window of N+1 prices), SELL when each is strictly
// lower, and stays silent otherwise (spec §4.2).
type Momentum struct {
	*base
}

// NewMomentum creates a Momentum(N) strategy.
func NewMomentum(lookback, orderQty int, onOrder OnOrder) *Momentum {
	return &Momentum{base: newBase(lookback, orderQty, momentumMaxWindow, onOrder)}
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) OnMarketTick(tick model.Tick) {
	prices, _ := m.pushAndWindow(tick)
	n := m.lookbackN() + 1
	if len(prices) < n {
		return
	}
	window := prices[len(prices)-n:]

	if strictlyIncreasing(window) {
		m.emit(tick, model.Buy, window[len(window)-1])
	} else if strictlyDecreasing(window) {
		m.emit(tick, model.Sell, window[len(window)-1])
	}
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] >= xs[i] {
			return false
		}
	}
	return len(xs) > 1
}

func strictlyDecreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] <= xs[i] {
			return false
		}
	}
	return len(xs) > 1
}
