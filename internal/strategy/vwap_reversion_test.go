package strategy

import (
	"testing"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func feedTrades(s Strategy, venue string, rows [][2]float64) {
	for _, row := range rows {
		s.OnMarketTick(model.Tick{Venue: venue, Symbol: "X", Price: row[0], Size: row[1]})
	}
}

func TestVWAPReversionSellAboveVWAP(t *testing.T) {
	var orders []model.Order
	v := NewVWAPReversion(3, 5, func(o model.Order) { orders = append(orders, o) })
	// vwap = (100*1 + 102*1 + 104*2) / 4 = 102.5; last = 104 > vwap
	feedTrades(v, "X", [][2]float64{{100, 1}, {102, 1}, {104, 2}})

	if len(orders) != 1 || orders[0].Side != model.Sell {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestVWAPReversionBuyBelowVWAP(t *testing.T) {
	var orders []model.Order
	v := NewVWAPReversion(3, 5, func(o model.Order) { orders = append(orders, o) })
	// vwap = (104*2 + 102*1 + 100*1) / 4 = 102.5; last = 100 < vwap
	feedTrades(v, "X", [][2]float64{{104, 2}, {102, 1}, {100, 1}})

	if len(orders) != 1 || orders[0].Side != model.Buy {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestVWAPReversionTreatsZeroSizeAsOne(t *testing.T) {
	var orders []model.Order
	v := NewVWAPReversion(2, 5, func(o model.Order) { orders = append(orders, o) })
	// sizes 0,0 both treated as 1: vwap = (100+110)/2 = 105; last=110 > vwap
	feedTrades(v, "X", [][2]float64{{100, 0}, {110, 0}})

	if len(orders) != 1 || orders[0].Side != model.Sell {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}
