package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const vwapMaxWindow = 50

// VWAPReversion emits BUY when the last price is below the volume-weighted
// average price of the window, SELL when above (spec §4.2). A tick with
// size 0 is treated as size 1 for the weighting.
type VWAPReversion struct {
	*base
}

func NewVWAPReversion(lookback, orderQty int, onOrder OnOrder) *VWAPReversion {
	return &VWAPReversion{base: newBase(lookback, orderQty, vwapMaxWindow, onOrder)}
}

func (v *VWAPReversion) Name() string { return "vwap_reversion" }

func (v *VWAPReversion) OnMarketTick(tick model.Tick) {
	prices, sizes := v.pushAndWindow(tick)
	n := v.lookbackN()
	if len(prices) < n {
		return
	}
	priceWindow := prices[len(prices)-n:]
	sizeWindow := sizes[len(sizes)-n:]

	var num, den float64
	for i, p := range priceWindow {
		s := sizeWindow[i]
		if s == 0 {
			s = 1
		}
		num += p * s
		den += s
	}
	if den == 0 {
		return
	}
	vwap := num / den

	last := priceWindow[len(priceWindow)-1]
	switch {
	case last < vwap:
		v.emit(tick, model.Buy, last)
	case last > vwap:
		v.emit(tick, model.Sell, last)
	}
}
