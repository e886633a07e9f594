package strategy

import (
	"testing"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func TestBreakoutBuyAboveHigh(t *testing.T) {
	var orders []model.Order
	b := NewBreakout(3, 5, func(o model.Order) { orders = append(orders, o) })
	// window of 3 prior to the last tick: [100, 101, 99], high=101; last=105 > 101
	feedPrices(b, "X", []float64{100, 101, 99, 105})

	if len(orders) != 1 || orders[0].Side != model.Buy || orders[0].Price != 105 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestBreakoutSellBelowLow(t *testing.T) {
	var orders []model.Order
	b := NewBreakout(3, 5, func(o model.Order) { orders = append(orders, o) })
	feedPrices(b, "X", []float64{100, 101, 99, 50})

	if len(orders) != 1 || orders[0].Side != model.Sell || orders[0].Price != 50 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestBreakoutSilentWithinRange(t *testing.T) {
	var orders []model.Order
	b := NewBreakout(3, 5, func(o model.Order) { orders = append(orders, o) })
	feedPrices(b, "X", []float64{100, 101, 99, 100})

	if len(orders) != 0 {
		t.Fatalf("expected silence within range, got %+v", orders)
	}
}
