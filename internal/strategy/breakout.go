package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const breakoutMaxWindow = 20

// Breakout emits BUY when the last price exceeds the high of the N prices
// before it, SELL when it falls below their low (spec §4.2).
type Breakout struct {
	*base
}

func NewBreakout(lookback, orderQty int, onOrder OnOrder) *Breakout {
	return &Breakout{base: newBase(lookback, orderQty, breakoutMaxWindow, onOrder)}
}

func (b *Breakout) Name() string { return "breakout" }

func (b *Breakout) OnMarketTick(tick model.Tick) {
	prices, _ := b.pushAndWindow(tick)
	n := b.lookbackN()
	if len(prices) < n+1 {
		return
	}
	last := prices[len(prices)-1]
	prior := prices[len(prices)-n-1 : len(prices)-1]

	high, low := prior[0], prior[0]
	for _, p := range prior {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	switch {
	case last > high:
		b.emit(tick, model.Buy, last)
	case last < low:
		b.emit(tick, model.Sell, last)
	}
}
