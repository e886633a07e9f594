// Package model holds the data types shared across the tick -> strategy ->
// order -> latency -> book -> broadcast pipeline.
package model

import "time"

// Side is a BUY or SELL intent.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Tick is an immutable observation produced by a Tick Source.
type Tick struct {
	Venue            string
	Symbol           string
	Price            float64
	Size             float64 // 0 when unknown
	ExchangeRecvTsMs int64   // -1 if not supplied by the source
	IngestTsMs       int64   // set by the source at emission time
}

// Order is an intent produced by a Strategy in response to one tick.
type Order struct {
	ID       string
	Venue    string
	Symbol   string
	Side     Side
	Price    float64
	Quantity int
	Timestamp time.Time

	ExchangeRecvTsMs int64
	IngestTsMs       int64
}

// CreatedTsMs returns the order's creation time as epoch milliseconds.
func (o Order) CreatedTsMs() int64 {
	return o.Timestamp.UnixMilli()
}

// Trade is the record produced by the Execution Book when an Order is applied.
// ID identifies the trade itself; OrderID is the originating Order's ID and
// is the value carried over the wire as "orderId" (spec §6).
type Trade struct {
	ID      string
	OrderID string
	Venue   string
	Symbol  string
	Side    Side
	Price   float64
	Size    float64
	PnL     float64

	ExchangeRecvTsMs    int64
	IngestTsMs          int64
	OrderCreatedTsMs    int64
	OrderExecutedTsMs   int64
	ServerBroadcastTsMs int64
	ModelledLatencyMs   float64
}

// LatencyEvent is emitted by the Latency Scheduler when it enqueues an order.
type LatencyEvent struct {
	Venue     string
	LatencyMs float64
	OrderID   string
	Now       time.Time
}
