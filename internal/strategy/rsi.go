package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const rsiMaxWindow = 60

// RSI emits BUY when the simplified (unsmoothed) relative-strength index of
// the window falls below 30, SELL when it rises above 70 (spec §4.2).
// The period is the lookback, capped at 59 ticks.
type RSI struct {
	*base
}

func NewRSI(lookback, orderQty int, onOrder OnOrder) *RSI {
	return &RSI{base: newBase(lookback, orderQty, rsiMaxWindow, onOrder)}
}

func (r *RSI) Name() string { return "rsi" }

func (r *RSI) OnMarketTick(tick model.Tick) {
	prices, _ := r.pushAndWindow(tick)

	period := r.lookbackN()
	if period > r.maxWindow-1 {
		period = r.maxWindow - 1
	}
	need := period + 1
	if len(prices) < need {
		return
	}
	window := prices[len(prices)-need:]

	var gain, loss float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}

	last := window[len(window)-1]
	switch {
	case rsi < 30:
		r.emit(tick, model.Buy, last)
	case rsi > 70:
		r.emit(tick, model.Sell, last)
	}
}
