package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func quote(t schema.EventType, price schema.Price, qty schema.Quantity, ts int64) schema.Event {
	return schema.Event{
		Header: schema.EventHeader{Type: t},
		Quote:  schema.QuoteUpdate{OrderID: 1, Qty: qty, Price: price, Timestamp: ts},
	}
}

func newOrder(id uint64, priceText string, qty schema.Quantity, orderType schema.OrderType) schema.Action {
	return schema.Action{
		Kind:          schema.ActionNewOrder,
		ClientOrderID: id,
		PriceText:     priceText,
		Qty:           qty,
		Type:          orderType,
	}
}

func eventTypes(events []schema.Event) []schema.EventType {
	types := make([]schema.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Header.Type
	}
	return types
}

func TestNewOrderRestsThenFillsAtOwnLimit(t *testing.T) {
	ex := New(Config{})
	ex.OnMarketEvent(quote(schema.EventBid, 9_9000, 500, 1000))
	ex.OnMarketEvent(quote(schema.EventAsk, 10_1000, 500, 1001))

	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 100, schema.OrderTypeBuy),
	}, 1002)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted}, eventTypes(events))
	assert.Equal(t, 1, ex.OpenOrderCount())

	// The ask drops through the bid's limit: fill at the resting price.
	events = ex.OnMarketEvent(quote(schema.EventAsk, 9_9500, 300, 1003))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	fill := events[0].Fill
	assert.Equal(t, uint64(1), fill.ClientOrderID)
	assert.Equal(t, schema.Quantity(100), fill.Qty)
	assert.Equal(t, schema.Quantity(0), fill.RemainingQty)
	assert.Equal(t, schema.Price(10_0000), fill.Price)
	assert.Equal(t, int64(100), ex.Position())
	assert.Zero(t, ex.OpenOrderCount())
}

func TestAggressiveOrderFillsAtOpposingTop(t *testing.T) {
	ex := New(Config{})
	ex.OnMarketEvent(quote(schema.EventAsk, 10_1000, 500, 1000))

	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.2000", 100, schema.OrderTypeBuy),
	}, 1001)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted, schema.EventFill}, eventTypes(events))
	assert.Equal(t, schema.Price(10_1000), events[1].Fill.Price)
	assert.Equal(t, schema.Quantity(100), events[1].Fill.Qty)
}

func TestMarketOrderFillsAtOpposingTop(t *testing.T) {
	ex := New(Config{})
	ex.OnMarketEvent(quote(schema.EventBid, 9_9000, 500, 1000))

	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "0.0000", 200, schema.OrderTypeShort),
	}, 1001)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted, schema.EventFill}, eventTypes(events))
	fill := events[1].Fill
	assert.Equal(t, schema.Price(9_9000), fill.Price)
	assert.Equal(t, schema.Quantity(-200), fill.Qty)
	assert.Equal(t, int64(-200), ex.Position())
}

func TestPartialFillBoundedByDisplayedSize(t *testing.T) {
	ex := New(Config{})
	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 300, schema.OrderTypeBuy),
	}, 1000)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted}, eventTypes(events))

	events = ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 120, 1001))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	fill := events[0].Fill
	assert.Equal(t, schema.Quantity(120), fill.Qty)
	assert.Equal(t, schema.Quantity(180), fill.RemainingQty)
	assert.Equal(t, 1, ex.OpenOrderCount())

	// Another tick of liquidity completes the order.
	events = ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 500, 1002))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	assert.Equal(t, schema.Quantity(180), events[0].Fill.Qty)
	assert.Zero(t, ex.OpenOrderCount())
}

func TestLongSaleValidation(t *testing.T) {
	ex := New(Config{LongSaleValidation: true})

	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 100, schema.OrderTypeSell),
	}, 1000)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderRejected}, eventTypes(events))

	// Shorting the same quantity is allowed.
	events, err = ex.HandleActions([]schema.Action{
		newOrder(2, "10.0000", 100, schema.OrderTypeShort),
	}, 1001)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted}, eventTypes(events))
}

func TestNewOrderRejectsNonPositiveQuantity(t *testing.T) {
	ex := New(Config{})
	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 0, schema.OrderTypeBuy),
	}, 1000)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderRejected}, eventTypes(events))
}

func TestMalformedPriceIsFatal(t *testing.T) {
	ex := New(Config{})
	_, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0.0", 100, schema.OrderTypeBuy),
	}, 1000)
	require.Error(t, err)
}

func TestCancel(t *testing.T) {
	ex := New(Config{})
	_, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 100, schema.OrderTypeBuy),
	}, 1000)
	require.NoError(t, err)

	events, err := ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancel, ClientOrderID: 2, OrigClientOrderID: 1},
	}, 1001)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventCancelAccepted}, eventTypes(events))
	assert.Equal(t, uint64(2), events[0].Order.ClientOrderID)
	assert.Equal(t, uint64(1), events[0].Order.OrigClientOrderID)
	assert.Zero(t, ex.OpenOrderCount())

	// A second cancel finds nothing.
	events, err = ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancel, ClientOrderID: 3, OrigClientOrderID: 1},
	}, 1002)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventCancelRejected}, eventTypes(events))
}

func TestCancelReplace(t *testing.T) {
	ex := New(Config{})
	_, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 300, schema.OrderTypeBuy),
	}, 1000)
	require.NoError(t, err)

	// Partially fill 120 of 300.
	ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 120, 1001))

	// Replacement quantity must exceed the filled quantity.
	events, err := ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancelReplace, ClientOrderID: 2, OrigClientOrderID: 1,
			PriceText: "10.1000", Qty: 120, Type: schema.OrderTypeBuy},
	}, 1002)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventReplaceRejected}, eventTypes(events))

	events, err = ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancelReplace, ClientOrderID: 3, OrigClientOrderID: 1,
			PriceText: "10.1000", Qty: 200, Type: schema.OrderTypeBuy},
	}, 1003)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventReplaceAccepted}, eventTypes(events))
	assert.Equal(t, uint64(3), events[0].Order.ClientOrderID)
	assert.Equal(t, uint64(1), events[0].Order.OrigClientOrderID)
	assert.Equal(t, 1, ex.OpenOrderCount())

	// The replacement works the residual 80 shares.
	events = ex.OnMarketEvent(quote(schema.EventAsk, 10_0500, 500, 1004))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	assert.Equal(t, schema.Quantity(80), events[0].Fill.Qty)
	assert.Equal(t, schema.Quantity(0), events[0].Fill.RemainingQty)
}

func TestCancelReplaceUnknownOrder(t *testing.T) {
	ex := New(Config{})
	events, err := ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancelReplace, ClientOrderID: 2, OrigClientOrderID: 99,
			PriceText: "10.0000", Qty: 100, Type: schema.OrderTypeBuy},
	}, 1000)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventReplaceRejected}, eventTypes(events))
}

func TestCancelAll(t *testing.T) {
	ex := New(Config{})
	_, err := ex.HandleActions([]schema.Action{
		newOrder(1, "10.0000", 100, schema.OrderTypeBuy),
		newOrder(2, "10.1000", 100, schema.OrderTypeBuy),
		newOrder(3, "10.5000", 100, schema.OrderTypeShort),
	}, 1000)
	require.NoError(t, err)
	require.Equal(t, 3, ex.OpenOrderCount())

	events, err := ex.HandleActions([]schema.Action{
		{Kind: schema.ActionCancelAll, ClientOrderID: 4},
	}, 1001)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{
		schema.EventCancelAccepted, schema.EventCancelAccepted, schema.EventCancelAccepted,
	}, eventTypes(events))
	for i, ev := range events {
		assert.Equal(t, uint64(4), ev.Order.ClientOrderID)
		assert.Equal(t, uint64(i+1), ev.Order.OrigClientOrderID)
	}
	assert.Zero(t, ex.OpenOrderCount())
}

func TestFillDeterminismByClientOrderID(t *testing.T) {
	ex := New(Config{})
	_, err := ex.HandleActions([]schema.Action{
		newOrder(2, "10.0000", 100, schema.OrderTypeBuy),
		newOrder(1, "10.0000", 100, schema.OrderTypeBuy),
	}, 1000)
	require.NoError(t, err)

	// Displayed size covers one order only: the lower id fills first.
	events := ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 100, 1001))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	assert.Equal(t, uint64(1), events[0].Fill.ClientOrderID)
}

func TestZeroQuantityQuoteClearsLevel(t *testing.T) {
	ex := New(Config{})
	ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 100, 1000))
	ex.OnMarketEvent(quote(schema.EventAsk, 10_0000, 0, 1001))

	// A market order finds no opposing liquidity and rests.
	events, err := ex.HandleActions([]schema.Action{
		newOrder(1, "0.0000", 100, schema.OrderTypeBuy),
	}, 1002)
	require.NoError(t, err)
	require.Equal(t, []schema.EventType{schema.EventNewOrderAccepted}, eventTypes(events))
	assert.Equal(t, 1, ex.OpenOrderCount())

	// It fills as soon as liquidity returns.
	events = ex.OnMarketEvent(quote(schema.EventAsk, 10_2000, 500, 1003))
	require.Equal(t, []schema.EventType{schema.EventFill}, eventTypes(events))
	assert.Equal(t, schema.Price(10_2000), events[0].Fill.Price)
}
