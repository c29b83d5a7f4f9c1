package strategy

import (
	"main/internal/schema"
)

const (
	centsMultiplier  int64 = 1000
	millisInSecond   int64 = 1000
	momentumClipSize       = 100
)

// MomentumConfig enumerates every recognized option of the momentum
// strategy with its pre-declared type. Times are milliseconds, monetary
// limits are price units.
type MomentumConfig struct {
	MaxPosition       int64
	MaxPnLLoss        int64
	MaxPnLGain        int64
	MinTime           int64
	MinCents          int64
	Cooldown          int64
	MaxOpenOrderTime  int64
	CloseoutFreshness int64
}

// DefaultMomentumConfig returns the stock parameter set.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		MaxPosition:       1000,
		MaxPnLLoss:        50 * centsMultiplier,
		MaxPnLGain:        90 * centsMultiplier,
		MinTime:           1 * millisInSecond,
		MinCents:          2 * centsMultiplier,
		Cooldown:          2 * millisInSecond,
		MaxOpenOrderTime:  10 * millisInSecond,
		CloseoutFreshness: millisInSecond / 2,
	}
}

// Apply coerces recognized options onto the config. Unrecognized keys are
// ignored; integer fields truncate fractional components.
func (c *MomentumConfig) Apply(opts Options) error {
	fields := map[string]*int64{
		"max_position":        &c.MaxPosition,
		"max_pnl_loss":        &c.MaxPnLLoss,
		"max_pnl_gain":        &c.MaxPnLGain,
		"min_time":            &c.MinTime,
		"min_cents":           &c.MinCents,
		"cooldown":            &c.Cooldown,
		"max_open_order_time": &c.MaxOpenOrderTime,
		"closeout_freshness":  &c.CloseoutFreshness,
	}
	for key, field := range fields {
		if err := opts.Int64(key, field); err != nil {
			return err
		}
	}
	return nil
}

// Momentum trades midpoint deviations from the last trade print: it sells
// when the midpoint drops below the last trade by a threshold and buys on
// the mirror condition, with cooldowns, stale-order cancelation, PnL
// closeouts, and an end-of-day wind-down.
type Momentum struct {
	NopStrategy
	cfg MomentumConfig

	lastOrderTime   int64
	closeoutOrderID uint64
	eod             bool
	closedOut       bool
	canceledOut     bool
}

// NewMomentum creates the strategy with the given parameters.
func NewMomentum(cfg MomentumConfig) *Momentum {
	m := &Momentum{cfg: cfg}
	m.Reset()
	return m
}

func (m *Momentum) Reset() {
	m.lastOrderTime = 0
	m.closeoutOrderID = 0
	m.eod = false
	m.closedOut = false
	m.canceledOut = false
}

func (m *Momentum) OnBid(rt *Runtime)   { m.calc(rt) }
func (m *Momentum) OnAsk(rt *Runtime)   { m.calc(rt) }
func (m *Momentum) OnTrade(rt *Runtime) { m.calc(rt) }

func (m *Momentum) OnFill(rt *Runtime) {
	if fill, ok := rt.LastFill(); ok &&
		fill.ClientOrderID == m.closeoutOrderID && fill.RemainingQty == 0 {
		// The closeout limit order is fully filled.
		m.closeoutOrderID = 0
	}
	m.calc(rt)
}

func (m *Momentum) OnCancelReplaceRejected(rt *Runtime, clientOrderID uint64) {
	if clientOrderID == m.closeoutOrderID {
		m.closeoutOrderID = 0
	}
}

func (m *Momentum) OnNewOrderRejected(rt *Runtime, clientOrderID uint64) {
	if clientOrderID == m.closeoutOrderID {
		m.closeoutOrderID = 0
	}
}

func (m *Momentum) calc(rt *Runtime) {
	if m.checkEOD(rt) {
		// Don't trade as we get close to the end of the day.
		return
	}
	if rt.LastTime() < rt.Book().SessionOpen() {
		// Don't place orders before the market open.
		return
	}

	if rt.UnrealizedPnL() > m.cfg.MaxPnLGain {
		// Realize gains.
		m.closeoutPosition(rt)
	} else if rt.UnrealizedPnL() < -m.cfg.MaxPnLLoss {
		// Cut losses.
		m.closeoutPosition(rt)
	}

	if rt.LastTime() < m.lastOrderTime+m.cfg.Cooldown {
		// Don't place orders too quickly.
		return
	}

	for _, order := range rt.OpenOrders() {
		if rt.LastTime()-order.PlacedTime > m.cfg.MaxOpenOrderTime {
			rt.Cancel(order.ClientOrderID)
		}
	}

	trade, ok := rt.LastTrade()
	if !ok {
		return
	}
	mid := rt.Book().MidpointPrice()
	shares := rt.SharesHeld()
	stale := rt.LastTime() > trade.Timestamp+m.cfg.MinTime
	roomLeft := abs64(shares) < m.cfg.MaxPosition

	switch {
	case mid < trade.Price-schema.Price(m.cfg.MinCents) && stale && roomLeft:
		rt.LogSignal("sell")
		if shares < momentumClipSize {
			rt.NewOrder(rt.Book().TopBidPrice(), momentumClipSize, schema.OrderTypeShort)
		} else {
			rt.NewOrder(rt.Book().TopBidPrice(), momentumClipSize, schema.OrderTypeSell)
		}
		m.lastOrderTime = rt.LastTime()
	case mid > trade.Price+schema.Price(m.cfg.MinCents) && stale && roomLeft:
		rt.LogSignal("buy")
		rt.NewOrder(rt.Book().TopAskPrice(), momentumClipSize, schema.OrderTypeBuy)
		m.lastOrderTime = rt.LastTime()
	}
}

// closeoutPosition works the position flat with a limit order at the top of
// the opposing side, replacing the order when the position size moved or
// the order went stale.
func (m *Momentum) closeoutPosition(rt *Runtime) {
	shares := rt.SharesHeld()
	if shares == 0 {
		return
	}

	if m.closeoutOrderID != 0 {
		order, ok := rt.SearchUnfilledOrders(m.closeoutOrderID)
		if !ok {
			m.closeoutOrderID = 0
			return
		}
		stale := rt.LastTime() > order.PlacedTime+m.cfg.CloseoutFreshness
		if int64(order.RemainingQty) != abs64(shares) || stale {
			if shares > 0 {
				m.closeoutOrderID = rt.CancelReplace(order.ClientOrderID,
					rt.Book().TopBidPrice(), schema.Quantity(shares), schema.OrderTypeSell)
			} else {
				m.closeoutOrderID = rt.CancelReplace(order.ClientOrderID,
					rt.Book().TopAskPrice(), schema.Quantity(-shares), schema.OrderTypeCover)
			}
		}
		return
	}

	if shares > 0 {
		m.closeoutOrderID = rt.NewOrder(rt.Book().TopBidPrice(), schema.Quantity(shares), schema.OrderTypeSell)
	} else {
		m.closeoutOrderID = rt.NewOrder(rt.Book().TopAskPrice(), schema.Quantity(-shares), schema.OrderTypeCover)
	}
}

// checkEOD stops quoting in the last minute of the session and flattens any
// remaining position in the last thirty seconds.
func (m *Momentum) checkEOD(rt *Runtime) bool {
	cancelTime := rt.Book().SessionClose() - 60*millisInSecond
	if rt.LastTime() > cancelTime && !m.canceledOut {
		m.eod = true
		rt.CancelAll()
		m.canceledOut = true
	}

	closeoutTime := rt.Book().SessionClose() - 30*millisInSecond
	shares := rt.SharesHeld()
	if shares != 0 && rt.LastTime() > closeoutTime && !m.closedOut {
		if shares > 0 {
			rt.NewMarketOrder(schema.Quantity(shares), schema.OrderTypeSell)
		} else {
			rt.NewMarketOrder(schema.Quantity(-shares), schema.OrderTypeBuy)
		}
		m.closedOut = true
	}

	return m.eod
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
