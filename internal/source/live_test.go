package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func TestLiveParsesCoinbaseMatchMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage() // drain the subscribe frame
		conn.WriteJSON(map[string]any{
			"type":      "match",
			"price":     "101.50",
			"time":      "2024-01-01T00:00:00.000Z",
		})
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	l := NewLive("coinbase", "BTC-USD")
	l.dial = func(ctx context.Context, _ string) (*websocket.Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		return conn, err
	}

	ticks := make(chan model.Tick, 1)
	l.Start(func(tk model.Tick) { ticks <- tk })
	defer l.Stop()

	select {
	case tk := <-ticks:
		if tk.Price != 101.50 {
			t.Fatalf("price = %v, want 101.50", tk.Price)
		}
		if tk.Venue != "COINBASE" {
			t.Fatalf("venue = %q, want COINBASE", tk.Venue)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}
}

func TestLiveDropsNonPositivePrice(t *testing.T) {
	ticks := parseExchangeMessage("COINBASE", "BTC-USD", []byte(`{"type":"match","price":"0","time":"2024-01-01T00:00:00.000Z"}`))
	if len(ticks) != 0 {
		t.Fatalf("expected non-positive price to be dropped, got %+v", ticks)
	}
}

func TestLiveCapsTicksPerMessage(t *testing.T) {
	arr := "["
	for i := 0; i < 20; i++ {
		if i > 0 {
			arr += ","
		}
		arr += `{"price":"100","time":"2024-01-01T00:00:00.000Z"}`
	}
	arr += "]"

	ticks := parseExchangeMessage("COINBASE", "BTC-USD", []byte(arr))
	if len(ticks) != maxTicksPerMessage {
		t.Fatalf("got %d ticks, want %d", len(ticks), maxTicksPerMessage)
	}
}
