// Package strategy implements the six signal-generation strategies of spec
// §4.2, sharing a common rolling-window/order-emission base.
package strategy

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

// OnOrder is invoked once per tick a strategy decides to trade on.
type OnOrder func(model.Order)

// Strategy consumes ticks serially (per source) and emits zero or one order
// per tick via its OnOrder subscriber.
type Strategy interface {
	OnMarketTick(tick model.Tick)
	SetLookback(n int)
	SetOrderQuantity(q int)
	Lookback() int
	OrderQuantity() int
	Name() string
}

// window is a per-venue rolling (price, size) buffer bounded by maxLen.
type window struct {
	prices []float64
	sizes  []float64
	maxLen int
}

func (w *window) push(price, size float64) {
	w.prices = append(w.prices, price)
	w.sizes = append(w.sizes, size)
	if len(w.prices) > w.maxLen {
		over := len(w.prices) - w.maxLen
		w.prices = w.prices[over:]
		w.sizes = w.sizes[over:]
	}
}

// base holds the state every strategy in this package shares: a per-venue
// rolling window, a monotone local order counter, and tunable
// lookback/order-quantity parameters.
type base struct {
	mu        sync.Mutex
	windows   map[string]*window
	lookback  int32
	orderQty  int32
	maxWindow int

	counter uint64
	onOrder OnOrder
}

func newBase(lookback, orderQty, maxWindow int, onOrder OnOrder) *base {
	if lookback < 1 {
		lookback = 1
	}
	if orderQty < 1 {
		orderQty = 1
	}
	return &base{
		windows:   make(map[string]*window),
		lookback:  int32(lookback),
		orderQty:  int32(orderQty),
		maxWindow: maxWindow,
		onOrder:   onOrder,
	}
}

func (b *base) SetLookback(n int) {
	if n < 1 {
		return
	}
	atomic.StoreInt32(&b.lookback, int32(n))
}

func (b *base) SetOrderQuantity(q int) {
	if q < 1 {
		return
	}
	atomic.StoreInt32(&b.orderQty, int32(q))
}

func (b *base) lookbackN() int { return int(atomic.LoadInt32(&b.lookback)) }
func (b *base) qty() int       { return int(atomic.LoadInt32(&b.orderQty)) }

// Lookback returns the currently configured window length.
func (b *base) Lookback() int { return b.lookbackN() }

// OrderQuantity returns the currently configured per-order quantity.
func (b *base) OrderQuantity() int { return b.qty() }

// pushAndWindow records the tick in its venue's window and returns a copy of
// the current price/size slices, locking only for the duration of the copy.
func (b *base) pushAndWindow(tick model.Tick) (prices, sizes []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, ok := b.windows[tick.Venue]
	if !ok {
		w = &window{maxLen: b.maxWindow}
		b.windows[tick.Venue] = w
	}
	w.push(tick.Price, tick.Size)

	prices = make([]float64, len(w.prices))
	copy(prices, w.prices)
	sizes = make([]float64, len(w.sizes))
	copy(sizes, w.sizes)
	return prices, sizes
}

// emit builds and publishes an order inheriting tick's routing/timestamp
// fields, per spec §4.2.
func (b *base) emit(tick model.Tick, side model.Side, price float64) {
	if b.onOrder == nil {
		return
	}
	n := atomic.AddUint64(&b.counter, 1)
	order := model.Order{
		ID:               "O" + strconv.FormatUint(n, 10),
		Venue:            tick.Venue,
		Symbol:           tick.Symbol,
		Side:             side,
		Price:            price,
		Quantity:         b.qty(),
		Timestamp:        time.Now(),
		ExchangeRecvTsMs: tick.ExchangeRecvTsMs,
		IngestTsMs:       tick.IngestTsMs,
	}
	b.onOrder(order)
}
