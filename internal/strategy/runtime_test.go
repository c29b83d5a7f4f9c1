package strategy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/book"
	"main/internal/ledger"
	"main/internal/schema"
)

// scripted lets a test inject hook behavior without a full strategy.
type scripted struct {
	NopStrategy
	onBid  func(rt *Runtime)
	onFill func(rt *Runtime)
}

func (s *scripted) OnBid(rt *Runtime) {
	if s.onBid != nil {
		s.onBid(rt)
	}
}

func (s *scripted) OnFill(rt *Runtime) {
	if s.onFill != nil {
		s.onFill(rt)
	}
}

func newTestRuntime(t *testing.T, strat Strategy) *Runtime {
	t.Helper()
	rt, err := New(strat, Config{
		LogSignals:    true,
		SignalLogPath: filepath.Join(t.TempDir(), "signals.csv"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func bidEvent(price schema.Price, qty schema.Quantity, ts int64) schema.Event {
	return schema.Event{
		Header: schema.EventHeader{Type: schema.EventBid},
		Quote:  schema.QuoteUpdate{OrderID: 900, Qty: qty, Price: price, Timestamp: ts},
	}
}

func askEvent(price schema.Price, qty schema.Quantity, ts int64) schema.Event {
	return schema.Event{
		Header: schema.EventHeader{Type: schema.EventAsk},
		Quote:  schema.QuoteUpdate{OrderID: 901, Qty: qty, Price: price, Timestamp: ts},
	}
}

func ackEvent(typ schema.EventType, id, origID uint64, ts int64) schema.Event {
	return schema.Event{
		Header: schema.EventHeader{Type: typ},
		Order:  schema.OrderReport{ClientOrderID: id, OrigClientOrderID: origID, Timestamp: ts},
	}
}

func TestDispatchDrainsActionsOncePerEvent(t *testing.T) {
	strat := &scripted{}
	rt := newTestRuntime(t, strat)

	strat.onBid = func(rt *Runtime) {
		rt.NewOrder(10_0000, 100, schema.OrderTypeBuy)
		rt.NewOrder(9_9000, 100, schema.OrderTypeBuy)
	}
	actions, err := rt.Dispatch(bidEvent(10_0000, 100, 1000))
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, schema.ActionNewOrder, actions[0].Kind)
	assert.Equal(t, "10.0000", actions[0].PriceText)
	assert.Equal(t, uint64(1), actions[0].ClientOrderID)
	assert.Equal(t, uint64(2), actions[1].ClientOrderID)

	// Nothing queued on the next event: the batch was drained.
	strat.onBid = nil
	actions, err = rt.Dispatch(bidEvent(10_0000, 100, 1001))
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestOrderLifecycleThroughDispatch(t *testing.T) {
	strat := &scripted{}
	rt := newTestRuntime(t, strat)

	strat.onBid = func(rt *Runtime) {
		rt.NewOrder(10_0000, 100, schema.OrderTypeBuy)
	}
	_, err := rt.Dispatch(bidEvent(10_0000, 100, 1000))
	require.NoError(t, err)
	strat.onBid = nil

	_, err = rt.Dispatch(ackEvent(schema.EventNewOrderAccepted, 1, 0, 1001))
	require.NoError(t, err)
	require.Contains(t, rt.OpenOrders(), uint64(1))

	// Cancel-replace id=1 -> id=2, then accept: Open contains id=2 only.
	newID := rt.CancelReplace(1, 10_1000, 100, schema.OrderTypeBuy)
	require.Equal(t, uint64(2), newID)
	rt.drain()

	_, err = rt.Dispatch(ackEvent(schema.EventReplaceAccepted, 2, 1, 1002))
	require.NoError(t, err)
	assert.NotContains(t, rt.OpenOrders(), uint64(1))
	require.Contains(t, rt.OpenOrders(), uint64(2))
	assert.Equal(t, schema.Price(10_1000), rt.OpenOrders()[2].Price)
}

func TestAcceptUnknownOrderIsFatal(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})
	_, err := rt.Dispatch(ackEvent(schema.EventNewOrderAccepted, 42, 0, 1000))
	require.ErrorIs(t, err, ledger.ErrUnknownPendingOrder)
}

func TestFillUnknownOrderIsFatal(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})
	_, err := rt.Dispatch(schema.Event{
		Header: schema.EventHeader{Type: schema.EventFill},
		Fill:   schema.FillReport{ClientOrderID: 42, Qty: 100, Price: 10_0000, Timestamp: 1000},
	})
	require.ErrorIs(t, err, ledger.ErrUnknownOpenOrder)
}

func TestReplaceAcceptedOutOfSyncIsWarning(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})
	_, err := rt.Dispatch(ackEvent(schema.EventReplaceAccepted, 5, 1, 1000))
	require.NoError(t, err)
}

func TestFillUpdatesAccounting(t *testing.T) {
	strat := &scripted{}
	rt := newTestRuntime(t, strat)

	_, err := rt.Dispatch(bidEvent(9_9000, 100, 1000))
	require.NoError(t, err)
	_, err = rt.Dispatch(askEvent(10_1000, 100, 1001))
	require.NoError(t, err)

	id := rt.NewOrder(9_0000, 100, schema.OrderTypeBuy)
	rt.drain()
	_, err = rt.Dispatch(ackEvent(schema.EventNewOrderAccepted, id, 0, 1002))
	require.NoError(t, err)

	var sawFill bool
	strat.onFill = func(rt *Runtime) {
		sawFill = true
		fill, ok := rt.LastFill()
		require.True(t, ok)
		assert.Equal(t, id, fill.ClientOrderID)
	}
	_, err = rt.Dispatch(schema.Event{
		Header: schema.EventHeader{Type: schema.EventFill},
		Fill:   schema.FillReport{ClientOrderID: id, Qty: 100, RemainingQty: 0, Price: 9_0000, Timestamp: 1003},
	})
	require.NoError(t, err)
	require.True(t, sawFill)

	assert.Equal(t, int64(100), rt.SharesHeld())
	// Midpoint 10.0000 against a 9.0000 cost basis on 100 shares.
	assert.Equal(t, int64(100*10000), rt.UnrealizedPnL())
	assert.NotContains(t, rt.OpenOrders(), id)
}

func TestClientOrderIDsSurviveReset(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})

	first := rt.NewOrder(10_0000, 100, schema.OrderTypeBuy)
	rt.drain()
	require.NoError(t, rt.Reset())

	second := rt.NewOrder(10_0000, 100, schema.OrderTypeBuy)
	assert.Greater(t, second, first)
}

func TestResetClearsState(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})

	_, err := rt.Dispatch(bidEvent(10_0000, 100, 1000))
	require.NoError(t, err)
	id := rt.NewOrder(10_0000, 100, schema.OrderTypeBuy)
	rt.drain()
	_, err = rt.Dispatch(ackEvent(schema.EventNewOrderAccepted, id, 0, 1001))
	require.NoError(t, err)

	require.NoError(t, rt.Reset())
	assert.Empty(t, rt.OpenOrders())
	assert.Zero(t, rt.SharesHeld())
	assert.Zero(t, rt.LastTime())
	_, hasBid := rt.LastBid()
	assert.False(t, hasBid)
}

func TestMarketOrderRoutesThroughLimitPath(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})
	rt.NewMarketOrder(100, schema.OrderTypeSell)
	actions := rt.drain()
	require.Len(t, actions, 1)
	assert.Equal(t, schema.ActionNewOrder, actions[0].Kind)
	assert.Equal(t, "0.0000", actions[0].PriceText)
	assert.Equal(t, schema.OrderTypeSell, actions[0].Type)
}

func TestCancelAllAction(t *testing.T) {
	rt := newTestRuntime(t, &scripted{})
	id := rt.CancelAll()
	actions := rt.drain()
	require.Len(t, actions, 1)
	assert.Equal(t, schema.ActionCancelAll, actions[0].Kind)
	assert.Equal(t, id, actions[0].ClientOrderID)
}

var _ book.View = (*book.TopOfBook)(nil)
