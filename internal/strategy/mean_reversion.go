package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const meanReversionMaxWindow = 20

// MeanReversion emits BUY when the last price is below the rolling mean,
// SELL when above, and stays silent when equal (spec §4.2).
type MeanReversion struct {
	*base
}

func NewMeanReversion(lookback, orderQty int, onOrder OnOrder) *MeanReversion {
	return &MeanReversion{base: newBase(lookback, orderQty, meanReversionMaxWindow, onOrder)}
}

func (m *MeanReversion) Name() string { return "mean_reversion" }

func (m *MeanReversion) OnMarketTick(tick model.Tick) {
	prices, _ := m.pushAndWindow(tick)
	n := m.lookbackN()
	if len(prices) < n {
		return
	}
	window := prices[len(prices)-n:]

	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(len(window))

	last := window[len(window)-1]
	switch {
	case last < mean:
		m.emit(tick, model.Buy, last)
	case last > mean:
		m.emit(tick, model.Sell, last)
	}
}
