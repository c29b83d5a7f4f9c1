// Package pnl consumes fill events and tracks position, running average
// cost, unrealized PnL, and optional realized-PnL/drawdown metrics.
package pnl

import (
	"math"

	"main/internal/schema"
)

// Fill is one recorded fill with its remaining-quantity sign restored.
// The fill list is append-only and is the sole input for realized metrics.
type Fill struct {
	ClientOrderID uint64
	Qty           schema.Quantity
	RemainingQty  schema.Quantity
	Price         schema.Price
	Timestamp     int64
}

// Engine derives position accounting state from the fill sequence.
type Engine struct {
	fills           []Fill
	sharesHeld      int64
	runningAvgPrice float64
	runningQty      int64
	unrealizedPnL   int64

	metricsEnabled bool
	ordersPlaced   int
	currentPnL     float64
	maxDrawdown    float64
}

// NewEngine creates an empty accounting engine. The realized-PnL and
// drawdown recomputation is O(total fills) per fill, so it stays behind
// the metrics flag for perf-sensitive replays.
func NewEngine(metricsEnabled bool) *Engine {
	return &Engine{metricsEnabled: metricsEnabled}
}

// ApplyFill records a fill and updates all derived state. The exchange
// reports remaining quantity as a magnitude; the sign is restored from the
// fill quantity before recording.
func (e *Engine) ApplyFill(r schema.FillReport, midpoint schema.Price) Fill {
	remaining := r.RemainingQty
	if r.Qty < 0 {
		remaining = -remaining
	}
	fill := Fill{
		ClientOrderID: r.ClientOrderID,
		Qty:           r.Qty,
		RemainingQty:  remaining,
		Price:         r.Price,
		Timestamp:     r.Timestamp,
	}
	e.fills = append(e.fills, fill)
	e.sharesHeld += int64(r.Qty)

	if e.sharesHeld == 0 {
		e.unrealizedPnL = 0
		e.runningAvgPrice = 0
		e.runningQty = 0
	} else {
		// Running average across the whole position's history, blended
		// by the newly filled quantity. Not strictly cost basis once the
		// position has flipped sign.
		qty := float64(r.Qty)
		e.runningAvgPrice = (float64(e.runningQty)*e.runningAvgPrice + qty*float64(r.Price)) /
			(qty + float64(e.runningQty))
		e.runningQty += int64(r.Qty)
		e.unrealizedPnL = int64(math.Round(float64(e.sharesHeld) * (float64(midpoint) - e.runningAvgPrice)))
	}

	if e.metricsEnabled {
		e.recomputeRealized()
	}
	return fill
}

// recomputeRealized matches buy and sell cohorts by volume-weighted average
// price over the full fill history.
func (e *Engine) recomputeRealized() {
	var buyQty, sellQty int64
	var buyCost, sellCost float64
	for _, f := range e.fills {
		if f.Qty > 0 {
			buyQty += int64(f.Qty)
			buyCost += float64(f.Qty) * float64(f.Price)
		}
		if f.Qty < 0 {
			sellQty += int64(f.Qty)
			sellCost += float64(f.Qty) * float64(f.Price)
		}
	}

	if sellQty != 0 && buyQty != 0 {
		avgSell := sellCost / float64(sellQty)
		avgBuy := buyCost / float64(buyQty)

		matched := buyQty
		if -sellQty < buyQty {
			matched = -sellQty
		}
		e.currentPnL = float64(matched)*avgSell - float64(matched)*avgBuy
	}

	if e.currentPnL < e.maxDrawdown {
		e.maxDrawdown = e.currentPnL
	}
}

// OrderPlaced bumps the accepted-order counter.
func (e *Engine) OrderPlaced() {
	e.ordersPlaced++
}

// SharesHeld returns the net position.
func (e *Engine) SharesHeld() int64 {
	return e.sharesHeld
}

// UnrealizedPnL returns the mark-to-market PnL in price units.
func (e *Engine) UnrealizedPnL() int64 {
	return e.unrealizedPnL
}

// CurrentPnL returns the realized PnL in price units. Zero unless metrics
// are enabled.
func (e *Engine) CurrentPnL() float64 {
	return e.currentPnL
}

// MaxDrawdown returns the realized-PnL low-water mark in price units.
func (e *Engine) MaxDrawdown() float64 {
	return e.maxDrawdown
}

// LastFill returns the most recently recorded fill.
func (e *Engine) LastFill() (Fill, bool) {
	if len(e.fills) == 0 {
		return Fill{}, false
	}
	return e.fills[len(e.fills)-1], true
}

// Fills returns the recorded fill history.
func (e *Engine) Fills() []Fill {
	return e.fills
}

// MetricsEnabled reports whether realized metrics are being tracked.
func (e *Engine) MetricsEnabled() bool {
	return e.metricsEnabled
}

// Reset clears fill history and all derived state.
func (e *Engine) Reset() {
	e.fills = nil
	e.sharesHeld = 0
	e.runningAvgPrice = 0
	e.runningQty = 0
	e.unrealizedPnL = 0
	e.ordersPlaced = 0
	e.currentPnL = 0
	e.maxDrawdown = 0
}
