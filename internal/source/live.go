package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

const maxTicksPerMessage = 10

// exchangeEndpoint is deliberately abstract per spec §1/§6: the concrete
// TLS/wire details of a given exchange are out of scope. Real deployments
// would swap this for the exchange's actual public trade-stream URL and
// subscribe payload.
var exchangeEndpoints = map[string]string{
	"coinbase": "wss://ws-feed.exchange.coinbase.com",
	"binance":  "wss://stream.binance.com:9443/ws",
}

// Live opens a WebSocket to a remote exchange and subscribes to a public
// trade channel for the configured product (spec §4.1).
type Live struct {
	Exchange string
	Symbol   string
	Venue    string

	dial func(ctx context.Context, url string) (*websocket.Conn, error)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewLive creates a live feed source for the given exchange/symbol pair.
func NewLive(exchange, symbol string) *Live {
	return &Live{
		Exchange: strings.ToLower(exchange),
		Symbol:   symbol,
		Venue:    strings.ToUpper(exchange),
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
	}
}

// Start connects and begins emitting ticks. Idempotent while already running.
func (l *Live) Start(on OnTick) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	stopCh := l.stopCh
	doneCh := l.doneCh
	l.mu.Unlock()

	go l.run(on, stopCh, doneCh)
}

func (l *Live) run(on OnTick, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	url := exchangeEndpoints[l.Exchange]
	if url == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := l.dial(ctx, url)
	cancel()
	if err != nil {
		// Source I/O error: terminate this feed silently (spec §4.1, §7).
		return
	}
	defer conn.Close()

	sub := subscribeMessage(l.Exchange, l.Symbol)
	if sub != nil {
		if err := conn.WriteJSON(sub); err != nil {
			return
		}
	}

	// Unblock ReadMessage promptly when stopped.
	go func() {
		<-stopCh
		conn.Close()
	}()

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		for _, tick := range parseExchangeMessage(l.Venue, l.Symbol, data) {
			on(tick)
		}
	}
}

// Stop blocks until the worker has exited. Idempotent.
func (l *Live) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	stopCh := l.stopCh
	doneCh := l.doneCh
	l.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func subscribeMessage(exchange, symbol string) any {
	switch exchange {
	case "coinbase":
		return map[string]any{
			"type":        "subscribe",
			"product_ids": []string{symbol},
			"channels":    []string{"matches"},
		}
	case "binance":
		return map[string]any{
			"method": "SUBSCRIBE",
			"params": []string{fmt.Sprintf("%s@trade", strings.ToLower(symbol))},
			"id":     1,
		}
	default:
		return nil
	}
}

// exchangeTrade is a lenient superset of the fields real exchange trade
// messages carry; unrecognized fields are ignored.
type exchangeTrade struct {
	Price string      `json:"price"`
	Time  string      `json:"time"`
	Ts    json.Number `json:"timestamp"`
	T     json.Number `json:"T"` // binance trade time (ms)
	P     string      `json:"p"` // binance price
}

// parseExchangeMessage decodes a single inbound WS frame into up to
// maxTicksPerMessage ticks. A single-object message yields at most one tick;
// an array message yields up to maxTicksPerMessage. Unparseable payloads and
// non-positive prices are dropped, per spec §4.1/§7.
func parseExchangeMessage(venue, symbol string, data []byte) []model.Tick {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		out := make([]model.Tick, 0, maxTicksPerMessage)
		for i, raw := range arr {
			if i >= maxTicksPerMessage {
				break
			}
			if t, ok := decodeTrade(venue, symbol, raw); ok {
				out = append(out, t)
			}
		}
		return out
	}

	if t, ok := decodeTrade(venue, symbol, data); ok {
		return []model.Tick{t}
	}
	return nil
}

func decodeTrade(venue, symbol string, raw []byte) (model.Tick, bool) {
	var ex exchangeTrade
	if err := json.Unmarshal(raw, &ex); err != nil {
		return model.Tick{}, false
	}

	priceStr := ex.Price
	if priceStr == "" {
		priceStr = ex.P
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return model.Tick{}, false
	}

	recvTs := int64(-1)
	switch {
	case len(ex.Time) >= 13:
		if ms, err := parseTimestampPrefix(ex.Time); err == nil {
			recvTs = ms
		}
	case ex.T.String() != "":
		if ms, err := ex.T.Int64(); err == nil {
			recvTs = ms
		}
	case ex.Ts.String() != "":
		if ms, err := ex.Ts.Int64(); err == nil {
			recvTs = ms
		}
	}

	return model.Tick{
		Venue:            venue,
		Symbol:           symbol,
		Price:            price,
		Size:             0,
		ExchangeRecvTsMs: recvTs,
		IngestTsMs:       time.Now().UnixMilli(),
	}, true
}

// parseTimestampPrefix derives exchange_recv_ts_ms from the first 13
// characters of a timestamp field per spec §4.1.
func parseTimestampPrefix(s string) (int64, error) {
	if len(s) < 13 {
		return 0, fmt.Errorf("timestamp too short: %q", s)
	}
	return strconv.ParseInt(s[:13], 10, 64)
}
