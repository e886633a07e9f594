package strategy

import (
	"testing"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

func TestMeanReversionBuyBelowMean(t *testing.T) {
	var orders []model.Order
	m := NewMeanReversion(3, 5, func(o model.Order) { orders = append(orders, o) })
	feedPrices(m, "X", []float64{100, 100, 100, 90}) // mean of last 3 (100,100,90) = 96.67, last=90 < mean

	if len(orders) != 1 || orders[0].Side != model.Buy {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestMeanReversionSellAboveMean(t *testing.T) {
	var orders []model.Order
	m := NewMeanReversion(3, 5, func(o model.Order) { orders = append(orders, o) })
	feedPrices(m, "X", []float64{100, 100, 100, 110})

	if len(orders) != 1 || orders[0].Side != model.Sell {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestMeanReversionSilentAtMean(t *testing.T) {
	var orders []model.Order
	m := NewMeanReversion(3, 5, func(o model.Order) { orders = append(orders, o) })
	feedPrices(m, "X", []float64{100, 100, 100})

	if len(orders) != 0 {
		t.Fatalf("expected silence when last == mean, got %+v", orders)
	}
}
