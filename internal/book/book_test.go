package book

import (
	"testing"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func mkOrder(venue string, side model.Side, price float64, qty int) model.Order {
	return model.Order{
		ID:        "O1",
		Venue:     venue,
		Symbol:    "X",
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Timestamp: time.Now(),
	}
}

func TestOpeningPositionHasZeroPnL(t *testing.T) {
	b := New(nil)
	trade := b.Submit(mkOrder("X", model.Buy, 103, 10), time.Now(), 0)

	if trade.PnL != 0 {
		t.Fatalf("pnl = %v, want 0", trade.PnL)
	}
	pos, avg := b.Position("X")
	if pos != 10 {
		t.Fatalf("position = %d, want 10", pos)
	}
	if f, _ := avg.Float64(); f != 103 {
		t.Fatalf("avg_price = %v, want 103", f)
	}
}

func TestCloseThenOpenOppositeSide(t *testing.T) {
	b := New(nil)
	b.Submit(mkOrder("X", model.Buy, 103, 10), time.Now(), 0)
	trade := b.Submit(mkOrder("X", model.Sell, 100, 10), time.Now(), 0)

	// 10 * (100 - 103) = -30
	if trade.PnL != -30 {
		t.Fatalf("pnl = %v, want -30", trade.PnL)
	}
	pos, _ := b.Position("X")
	if pos != 0 {
		t.Fatalf("position = %d, want 0", pos)
	}
	if f, _ := b.TotalPnL().Float64(); f != -30 {
		t.Fatalf("total_pnl = %v, want -30", f)
	}
}

func TestCrossingOrderSplitsCloseAndOpen(t *testing.T) {
	b := New(nil)
	b.Submit(mkOrder("X", model.Buy, 100, 5), time.Now(), 0)
	trade := b.Submit(mkOrder("X", model.Sell, 110, 8), time.Now(), 0)

	// close 5 @ (110-100)=10 each = 50 pnl; open 3 short @ 110
	if trade.PnL != 50 {
		t.Fatalf("pnl = %v, want 50", trade.PnL)
	}
	pos, avg := b.Position("X")
	if pos != -3 {
		t.Fatalf("position = %d, want -3", pos)
	}
	if f, _ := avg.Float64(); f != 110 {
		t.Fatalf("avg_price after crossing open leg = %v, want 110", f)
	}
}

func TestTradeIDsMonotone(t *testing.T) {
	b := New(nil)
	t1 := b.Submit(mkOrder("X", model.Buy, 1, 1), time.Now(), 0)
	t2 := b.Submit(mkOrder("X", model.Buy, 1, 1), time.Now(), 0)
	if t1.ID == t2.ID {
		t.Fatalf("trade ids not unique: %s == %s", t1.ID, t2.ID)
	}
}

func TestRecentTradesReturnsLastNInOrder(t *testing.T) {
	b := New(nil)
	var ids []string
	for i := 0; i < 5; i++ {
		tr := b.Submit(mkOrder("X", model.Buy, float64(100+i), 1), time.Now(), 0)
		ids = append(ids, tr.ID)
	}

	recent := b.RecentTrades(2)
	if len(recent) != 2 {
		t.Fatalf("len(RecentTrades(2)) = %d, want 2", len(recent))
	}
	if recent[0].ID != ids[3] || recent[1].ID != ids[4] {
		t.Fatalf("RecentTrades(2) = %+v, want last two trades oldest-first", recent)
	}
}

func TestRecentTradesNeverEvictsUnderlyingHistory(t *testing.T) {
	b := New(nil)
	for i := 0; i < 10; i++ {
		b.Submit(mkOrder("X", model.Buy, 100, 1), time.Now(), 0)
	}
	full := b.RecentTrades(0)
	if len(full) != 10 {
		t.Fatalf("RecentTrades(0) = %d trades, want the full 10-trade history", len(full))
	}
	if clamped := b.RecentTrades(1000); len(clamped) != 10 {
		t.Fatalf("RecentTrades(1000) = %d trades, want clamped to history length 10", len(clamped))
	}
}

func TestTotalPnLEqualsSumOfTradePnL(t *testing.T) {
	b := New(nil)
	var sum float64
	trades := []model.Trade{
		b.Submit(mkOrder("A", model.Buy, 100, 10), time.Now(), 0),
		b.Submit(mkOrder("A", model.Sell, 105, 10), time.Now(), 0),
		b.Submit(mkOrder("B", model.Sell, 50, 4), time.Now(), 0),
		b.Submit(mkOrder("B", model.Buy, 45, 4), time.Now(), 0),
	}
	for _, tr := range trades {
		sum += tr.PnL
	}
	total, _ := b.TotalPnL().Float64()
	if total != sum {
		t.Fatalf("total_pnl = %v, want %v", total, sum)
	}
}
