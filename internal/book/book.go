// Package book implements the execution book: per-venue position and
// average-price tracking, realized PnL accounting on every fill (spec
// §4.4), and an unbounded trade history with no eviction (spec §3).
package book

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

// OnTrade is invoked once per order submitted to the book, after position
// and PnL have been updated.
type OnTrade func(model.Trade)

type venueState struct {
	position int
	avgPrice decimal.Decimal
}

// Book tracks one position/avg-price pair per venue and accumulates realized
// PnL across all fills. All mutation happens under a single mutex: the
// original ground-truth exposes no concurrent order matching, so there is no
// benefit to finer-grained locking.
type Book struct {
	mu       sync.Mutex
	venues   map[string]*venueState
	totalPnL decimal.Decimal
	history  []model.Trade

	tradeCounter uint64
	onTrade      OnTrade
}

func New(onTrade OnTrade) *Book {
	return &Book{
		venues:  make(map[string]*venueState),
		onTrade: onTrade,
	}
}

// RecentTrades returns the last n trades in execution order, oldest first.
// n<=0 or n greater than the history length returns the full history. The
// history itself is never evicted (spec §3); this only bounds what's copied
// out for a caller like the /info diagnostics.
func (b *Book) RecentTrades(n int) []model.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.history) {
		n = len(b.history)
	}
	out := make([]model.Trade, n)
	copy(out, b.history[len(b.history)-n:])
	return out
}

// TotalPnL returns the cumulative realized PnL across all venues.
func (b *Book) TotalPnL() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalPnL
}

// Position returns the current signed position and average price for venue.
func (b *Book) Position(venue string) (int, decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.venues[venue]
	if !ok {
		return 0, decimal.Zero
	}
	return v.position, v.avgPrice
}

// Submit applies order to the book: it closes any opposing position first
// (realizing PnL on the closed quantity), then opens or extends the
// remaining quantity at a volume-weighted average price, and reports the
// resulting trade via OnTrade. modelledLatencyMs records the venue
// delay (if any) the order passed through before reaching the book, purely
// for reporting on the resulting Trade; it does not affect accounting.
// ServerBroadcastTsMs is left zero: it is stamped by the broadcaster at the
// moment of transmission, not at submission.
func (b *Book) Submit(order model.Order, executedAt time.Time, modelledLatencyMs float64) model.Trade {
	price := decimal.NewFromFloat(order.Price)

	b.mu.Lock()
	v, ok := b.venues[order.Venue]
	if !ok {
		v = &venueState{}
		b.venues[order.Venue] = v
	}

	pnl := decimal.Zero
	switch order.Side {
	case model.Buy:
		if v.position < 0 {
			closeQty := order.Quantity
			if -v.position < closeQty {
				closeQty = -v.position
			}
			pnl = pnl.Add(decimal.NewFromInt(int64(closeQty)).Mul(v.avgPrice.Sub(price)))
			v.position += closeQty

			openQty := order.Quantity - closeQty
			if openQty > 0 {
				v.avgPrice = weightedAvg(v.avgPrice, v.position, price, openQty)
				v.position += openQty
			}
		} else {
			v.avgPrice = weightedAvg(v.avgPrice, v.position, price, order.Quantity)
			v.position += order.Quantity
		}
	case model.Sell:
		if v.position > 0 {
			closeQty := order.Quantity
			if v.position < closeQty {
				closeQty = v.position
			}
			pnl = pnl.Add(decimal.NewFromInt(int64(closeQty)).Mul(price.Sub(v.avgPrice)))
			v.position -= closeQty

			openQty := order.Quantity - closeQty
			if openQty > 0 {
				v.avgPrice = weightedAvg(v.avgPrice, -v.position, price, openQty)
				v.position -= openQty
			}
		} else {
			v.avgPrice = weightedAvg(v.avgPrice, -v.position, price, order.Quantity)
			v.position -= order.Quantity
		}
	}
	b.totalPnL = b.totalPnL.Add(pnl)

	n := atomic.AddUint64(&b.tradeCounter, 1)
	pnlFloat, _ := pnl.Float64()
	trade := model.Trade{
		ID:                  "T" + strconv.FormatUint(n, 10),
		OrderID:             order.ID,
		Venue:               order.Venue,
		Symbol:              order.Symbol,
		Side:                order.Side,
		Price:               order.Price,
		Size:                float64(order.Quantity),
		PnL:                 pnlFloat,
		ExchangeRecvTsMs:    order.ExchangeRecvTsMs,
		IngestTsMs:          order.IngestTsMs,
		OrderCreatedTsMs:    order.CreatedTsMs(),
		OrderExecutedTsMs:   executedAt.UnixMilli(),
		ModelledLatencyMs:   modelledLatencyMs,
	}
	b.history = append(b.history, trade)
	b.mu.Unlock()

	if b.onTrade != nil {
		b.onTrade(trade)
	}
	return trade
}

// weightedAvg blends an existing position of qty0 at avg0 with an additional
// addQty at addPrice. When qty0 is zero (a fresh or fully-closed position)
// the result is simply addPrice.
func weightedAvg(avg0 decimal.Decimal, qty0 int, addPrice decimal.Decimal, addQty int) decimal.Decimal {
	total := qty0 + addQty
	if total == 0 {
		return addPrice
	}
	num := avg0.Mul(decimal.NewFromInt(int64(qty0))).Add(addPrice.Mul(decimal.NewFromInt(int64(addQty))))
	return num.Div(decimal.NewFromInt(int64(total)))
}
