package source

import (
	"testing"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func TestSyntheticEmitsTicks(t *testing.T) {
	s := NewSynthetic("BTC-USD", 5*time.Millisecond, 100, 1)

	var got []model.Tick
	done := make(chan struct{})
	s.Start(func(tk model.Tick) {
		got = append(got, tk)
		if len(got) == 5 {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ticks")
	}
	s.Stop()

	for _, tk := range got {
		if tk.Venue != "SYNTH" {
			t.Fatalf("venue = %q, want SYNTH", tk.Venue)
		}
		if tk.Symbol != "BTC-USD" {
			t.Fatalf("symbol = %q, want BTC-USD", tk.Symbol)
		}
		if tk.Price < walkFloor {
			t.Fatalf("price %v below floor %v", tk.Price, walkFloor)
		}
		if tk.ExchangeRecvTsMs != -1 {
			t.Fatalf("exchange_recv_ts_ms = %d, want -1", tk.ExchangeRecvTsMs)
		}
	}
}

func TestSyntheticFloorClamp(t *testing.T) {
	s := NewSynthetic("X", time.Millisecond, 0.5, 1)
	if s.price < walkFloor {
		t.Fatalf("start price not clamped to floor: %v", s.price)
	}
}

func TestSyntheticStartStopIdempotent(t *testing.T) {
	s := NewSynthetic("X", 5*time.Millisecond, 100, 1)
	s.Start(func(model.Tick) {})
	s.Start(func(model.Tick) {}) // no-op, must not panic or deadlock
	s.Stop()
	s.Stop() // no-op
}
