// Package protocol defines the JSON wire messages pushed to WebSocket
// clients (spec §6): trade fills, latency events, and heartbeats.
package protocol

import (
	"strconv"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

// Fixed6 marshals a float64 as an unquoted JSON number with exactly six
// decimal places, matching the wire format spec §6 requires for all
// non-integer numeric fields.
type Fixed6 float64

func (f Fixed6) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', 6, 64)), nil
}

// EventMessage is the shared shape for both trade and latency broadcasts;
// a latency event carries empty symbol/side/orderId and zero numerics
// except ModelledLatencyMs and ServerBroadcastTsMs.
type EventMessage struct {
	Type                string `json:"type"`
	Venue               string `json:"venue"`
	Symbol              string `json:"symbol"`
	Side                string `json:"side"`
	Price               Fixed6 `json:"price"`
	Size                Fixed6 `json:"size"`
	PnL                 Fixed6 `json:"pnl"`
	OrderID             string `json:"orderId"`
	ModelledLatencyMs   Fixed6 `json:"modelled_latency_ms"`
	ExchangeRecvTsMs    int64  `json:"exchange_recv_ts_ms"`
	IngestTsMs          int64  `json:"ingest_ts_ms"`
	OrderCreatedTsMs    int64  `json:"order_created_ts_ms"`
	OrderExecutedTsMs   int64  `json:"order_executed_ts_ms"`
	ServerBroadcastTsMs int64  `json:"server_broadcast_ts_ms"`
}

// HeartbeatMessage is the minimal periodic keepalive envelope.
type HeartbeatMessage struct {
	Type       string `json:"type"`
	ServerTsMs int64  `json:"server_ts_ms"`
}

// NewTradeMessage builds the wire envelope for a completed trade.
// serverBroadcastTsMs is stamped by the caller at the moment of broadcast.
func NewTradeMessage(t model.Trade, serverBroadcastTsMs int64) EventMessage {
	return EventMessage{
		Type:                "trade",
		Venue:               t.Venue,
		Symbol:              t.Symbol,
		Side:                string(t.Side),
		Price:               Fixed6(t.Price),
		Size:                Fixed6(t.Size),
		PnL:                 Fixed6(t.PnL),
		OrderID:             t.OrderID,
		ModelledLatencyMs:   Fixed6(t.ModelledLatencyMs),
		ExchangeRecvTsMs:    t.ExchangeRecvTsMs,
		IngestTsMs:          t.IngestTsMs,
		OrderCreatedTsMs:    t.OrderCreatedTsMs,
		OrderExecutedTsMs:   t.OrderExecutedTsMs,
		ServerBroadcastTsMs: serverBroadcastTsMs,
	}
}

// NewLatencyMessage builds the wire envelope for an applied venue delay.
func NewLatencyMessage(e model.LatencyEvent, serverBroadcastTsMs int64) EventMessage {
	return EventMessage{
		Type:                "latency",
		Venue:               e.Venue,
		ModelledLatencyMs:   Fixed6(e.LatencyMs),
		ServerBroadcastTsMs: serverBroadcastTsMs,
	}
}

// NewHeartbeatMessage builds the periodic keepalive envelope.
func NewHeartbeatMessage(serverTsMs int64) HeartbeatMessage {
	return HeartbeatMessage{Type: "hb", ServerTsMs: serverTsMs}
}
