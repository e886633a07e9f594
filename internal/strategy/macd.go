package strategy

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

const (
	macdShortPeriod  = 12
	macdSignalPeriod = 9
	macdMaxWindow    = 60
)

// MACD emits BUY when the MACD histogram (MACD line minus its signal-line
// EMA) is positive, SELL when negative (spec §4.2). The long EMA period is
// the lookback, raised to at least 13 and capped at 51; the short (12) and
// signal (9) periods are fixed.
type MACD struct {
	*base
}

func NewMACD(lookback, orderQty int, onOrder OnOrder) *MACD {
	return &MACD{base: newBase(lookback, orderQty, macdMaxWindow, onOrder)}
}

func (m *MACD) Name() string { return "macd" }

func (m *MACD) OnMarketTick(tick model.Tick) {
	prices, _ := m.pushAndWindow(tick)

	long := m.lookbackN()
	if long < macdShortPeriod+1 {
		long = macdShortPeriod + 1
	}
	if long+macdSignalPeriod > m.maxWindow {
		long = m.maxWindow - macdSignalPeriod
	}
	required := long + macdSignalPeriod
	if len(prices) < required {
		return
	}
	window := prices[len(prices)-required:]

	emaLong := emaSeries(window, long)
	emaShortFull := emaSeries(window, macdShortPeriod)
	if len(emaLong) == 0 || len(emaShortFull) < len(emaLong) {
		return
	}
	emaShort := emaShortFull[len(emaShortFull)-len(emaLong):]

	macdLine := make([]float64, len(emaLong))
	for i := range emaLong {
		macdLine[i] = emaShort[i] - emaLong[i]
	}
	if len(macdLine) < macdSignalPeriod {
		return
	}
	signalLine := emaSeries(macdLine, macdSignalPeriod)
	if len(signalLine) == 0 {
		return
	}

	histogram := macdLine[len(macdLine)-1] - signalLine[len(signalLine)-1]
	last := window[len(window)-1]
	switch {
	case histogram > 0:
		m.emit(tick, model.Buy, last)
	case histogram < 0:
		m.emit(tick, model.Sell, last)
	}
}

// emaSeries returns the exponential moving average of values with the given
// period, seeded by the simple average of the first `period` values. The
// returned series has len(values)-period+1 elements, or nil if there are
// fewer than `period` values.
func emaSeries(values []float64, period int) []float64 {
	if period < 1 || len(values) < period {
		return nil
	}
	k := 2.0 / (float64(period) + 1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	prev := seed
	for i := period; i < len(values); i++ {
		v := values[i]*k + prev*(1-k)
		out = append(out, v)
		prev = v
	}
	return out
}
