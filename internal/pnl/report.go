package pnl

import (
	"fmt"
	"strings"

	"main/internal/schema"
)

// Report is the end-of-run metrics summary. Monetary fields are descaled
// to whole price units.
type Report struct {
	OrdersPlaced   int
	FillCount      int
	SharesTraded   int64
	OpenOrderCount int
	SharesHeld     int64
	AvgFillPrice   float64
	MaxDrawdown    float64
	TotalPnL       float64
}

// Report summarizes the fill history. openOrders is supplied by the order
// ledger since the engine does not track order state.
func (e *Engine) Report(openOrders int) Report {
	var sharesTraded, netShares int64
	var totalCost float64
	for _, f := range e.fills {
		qty := int64(f.Qty)
		if qty < 0 {
			qty = -qty
		}
		sharesTraded += qty
		netShares += int64(f.Qty)
		totalCost += float64(f.Price) * float64(qty)
	}

	r := Report{
		OrdersPlaced:   e.ordersPlaced,
		FillCount:      len(e.fills),
		SharesTraded:   sharesTraded,
		OpenOrderCount: openOrders,
		SharesHeld:     netShares,
		MaxDrawdown:    e.maxDrawdown / schema.PriceUnit,
		TotalPnL:       e.currentPnL / schema.PriceUnit,
	}
	if sharesTraded != 0 {
		r.AvgFillPrice = totalCost / float64(sharesTraded) / schema.PriceUnit
	}
	return r
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("\n----- Strategy Report -----\n")
	fmt.Fprintf(&b, "Orders Placed: %d\n", r.OrdersPlaced)
	fmt.Fprintf(&b, "Fill Count: %d\n", r.FillCount)
	fmt.Fprintf(&b, "Shares Traded: %d\n", r.SharesTraded)
	fmt.Fprintf(&b, "Open Order Count: %d\n", r.OpenOrderCount)
	fmt.Fprintf(&b, "Shares Held @ Close: %d\n", r.SharesHeld)
	fmt.Fprintf(&b, "Avg Fill Price: %.4f\n", r.AvgFillPrice)
	fmt.Fprintf(&b, "Max Drawdown: %.4f\n", r.MaxDrawdown)
	fmt.Fprintf(&b, "Total PnL: %.4f\n", r.TotalPnL)
	return b.String()
}
