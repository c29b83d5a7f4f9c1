// Package sim is a simulated exchange for backtests. It accepts the action
// batches a strategy runtime produces, rests the orders in a synthetic
// book, and crosses them against the recorded market data feed, reporting
// fills and acknowledgments as ordinary inbound events.
package sim

import (
	"sort"

	"github.com/yanun0323/logs"

	"main/internal/fixed"
	"main/internal/schema"
)

// Config controls exchange behavior.
type Config struct {
	// LongSaleValidation rejects plain sell orders whose quantity exceeds
	// the current simulated position; going short requires a short order.
	LongSaleValidation bool
}

type quoteLevel struct {
	price schema.Price
	qty   schema.Quantity
	live  bool
}

type restingOrder struct {
	clientOrderID uint64
	price         schema.Price
	market        bool
	remaining     schema.Quantity
	filled        schema.Quantity
	orderType     schema.OrderType
	placedTime    int64
}

// Exchange simulates one symbol's matching behavior. Resting orders fill
// at their own limit price when the opposing top of book touches them;
// aggressive orders fill at the opposing top. Acknowledgments are
// deterministic. Not safe for concurrent use.
type Exchange struct {
	cfg    Config
	orders map[uint64]*restingOrder

	topBid quoteLevel
	topAsk quoteLevel

	position int64
	seq      uint64
	now      int64
}

// New creates an empty exchange.
func New(cfg Config) *Exchange {
	return &Exchange{
		cfg:    cfg,
		orders: make(map[uint64]*restingOrder),
	}
}

// Position returns the net simulated position in shares.
func (e *Exchange) Position() int64 { return e.position }

// OpenOrderCount returns the number of resting simulated orders.
func (e *Exchange) OpenOrderCount() int { return len(e.orders) }

// Reset drops all resting orders and book state. The position carries
// across resets, matching a continuing session.
func (e *Exchange) Reset() {
	clear(e.orders)
	e.topBid = quoteLevel{}
	e.topAsk = quoteLevel{}
	e.now = 0
}

func (e *Exchange) header(eventType schema.EventType) schema.EventHeader {
	e.seq++
	return schema.NewHeader(eventType, schema.SourceExchange, e.seq, e.now, e.now)
}

func (e *Exchange) ack(eventType schema.EventType, clientOrderID, origClientOrderID uint64) schema.Event {
	return schema.Event{
		Header: e.header(eventType),
		Order: schema.OrderReport{
			ClientOrderID:     clientOrderID,
			OrigClientOrderID: origClientOrderID,
			Timestamp:         e.now,
		},
	}
}

func fillSign(t schema.OrderType) schema.Quantity {
	if t.BuySide() {
		return 1
	}
	return -1
}

func (e *Exchange) fill(o *restingOrder, qty schema.Quantity, price schema.Price) schema.Event {
	o.remaining -= qty
	o.filled += qty
	signed := fillSign(o.orderType) * qty
	e.position += int64(signed)
	if o.remaining == 0 {
		delete(e.orders, o.clientOrderID)
	}
	return schema.Event{
		Header: e.header(schema.EventFill),
		Fill: schema.FillReport{
			ClientOrderID: o.clientOrderID,
			Qty:           signed,
			RemainingQty:  o.remaining,
			Price:         price,
			Timestamp:     e.now,
		},
	}
}

// OnMarketEvent feeds one recorded market event through the book and
// returns any fills it produced.
func (e *Exchange) OnMarketEvent(ev schema.Event) []schema.Event {
	e.now = ev.Timestamp()

	switch ev.Header.Type {
	case schema.EventBid:
		e.topBid = quoteLevel{price: ev.Quote.Price, qty: ev.Quote.Qty, live: ev.Quote.Qty > 0}
		return e.cross(false, &e.topBid)
	case schema.EventAsk:
		e.topAsk = quoteLevel{price: ev.Quote.Price, qty: ev.Quote.Qty, live: ev.Quote.Qty > 0}
		return e.cross(true, &e.topAsk)
	default:
		return nil
	}
}

// cross fills resting orders on the side opposing the updated quote. The
// displayed size bounds the total filled quantity and is consumed by
// fills; orders are visited in client-order-id order so runs replay
// identically.
func (e *Exchange) cross(askUpdated bool, level *quoteLevel) []schema.Event {
	if !level.live {
		return nil
	}

	var events []schema.Event
	for _, o := range e.sortedOrders() {
		if level.qty == 0 {
			break
		}
		if o.orderType.BuySide() != askUpdated {
			continue
		}
		crossed := o.market ||
			(askUpdated && o.price >= level.price) ||
			(!askUpdated && o.price <= level.price)
		if !crossed {
			continue
		}

		qty := min(o.remaining, level.qty)
		price := o.price
		if o.market {
			price = level.price
		}
		events = append(events, e.fill(o, qty, price))
		level.qty -= qty
	}
	level.live = level.qty > 0
	return events
}

func (e *Exchange) sortedOrders() []*restingOrder {
	orders := make([]*restingOrder, 0, len(e.orders))
	for _, o := range e.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].clientOrderID < orders[j].clientOrderID
	})
	return orders
}

// HandleActions applies one drained action batch and returns the resulting
// acknowledgment and fill events, in order. A malformed limit price is
// fatal: the action stream is corrupt.
func (e *Exchange) HandleActions(actions []schema.Action, now int64) ([]schema.Event, error) {
	e.now = now

	var events []schema.Event
	for _, action := range actions {
		switch action.Kind {
		case schema.ActionNewOrder:
			batch, err := e.placeOrder(action)
			if err != nil {
				return nil, err
			}
			events = append(events, batch...)
		case schema.ActionCancel:
			events = append(events, e.cancelOrder(action.ClientOrderID, action.OrigClientOrderID))
		case schema.ActionCancelReplace:
			batch, err := e.replaceOrder(action)
			if err != nil {
				return nil, err
			}
			events = append(events, batch...)
		case schema.ActionCancelAll:
			events = append(events, e.cancelAll(action.ClientOrderID)...)
		default:
			logs.Warnf("ignoring unknown action kind %d (client order id %d)", action.Kind, action.ClientOrderID)
		}
	}
	return events, nil
}

func (e *Exchange) placeOrder(action schema.Action) ([]schema.Event, error) {
	price, err := fixed.ParsePrice(action.PriceText)
	if err != nil {
		return nil, err
	}
	if action.Qty <= 0 {
		logs.Warnf("new order %d rejected: quantity must be positive, got %d", action.ClientOrderID, action.Qty)
		return []schema.Event{e.ack(schema.EventNewOrderRejected, action.ClientOrderID, 0)}, nil
	}
	if e.cfg.LongSaleValidation && action.Type == schema.OrderTypeSell && int64(action.Qty) > e.position {
		logs.Warnf("new order %d rejected: selling %d against position %d requires a short order", action.ClientOrderID, action.Qty, e.position)
		return []schema.Event{e.ack(schema.EventNewOrderRejected, action.ClientOrderID, 0)}, nil
	}

	events := []schema.Event{e.ack(schema.EventNewOrderAccepted, action.ClientOrderID, 0)}
	events = append(events, e.rest(action.ClientOrderID, price, action.Qty, 0, action.Type)...)
	return events, nil
}

// rest admits an order into the book, removing liquidity first when it
// already crosses the opposing top. The aggressive portion trades at the
// opposing top's price.
func (e *Exchange) rest(clientOrderID uint64, price schema.Price, qty, alreadyFilled schema.Quantity, orderType schema.OrderType) []schema.Event {
	o := &restingOrder{
		clientOrderID: clientOrderID,
		price:         price,
		market:        price == 0,
		remaining:     qty,
		filled:        alreadyFilled,
		orderType:     orderType,
		placedTime:    e.now,
	}
	e.orders[clientOrderID] = o

	opposing := &e.topAsk
	if !orderType.BuySide() {
		opposing = &e.topBid
	}
	if !opposing.live {
		return nil
	}
	crossed := o.market ||
		(orderType.BuySide() && price >= opposing.price) ||
		(!orderType.BuySide() && price <= opposing.price)
	if !crossed {
		return nil
	}

	fillQty := min(o.remaining, opposing.qty)
	if fillQty == 0 {
		return nil
	}
	ev := e.fill(o, fillQty, opposing.price)
	opposing.qty -= fillQty
	opposing.live = opposing.qty > 0
	return []schema.Event{ev}
}

func (e *Exchange) cancelOrder(clientOrderID, origClientOrderID uint64) schema.Event {
	if _, ok := e.orders[origClientOrderID]; !ok {
		logs.Warnf("cancel %d rejected: no resting order %d", clientOrderID, origClientOrderID)
		return e.ack(schema.EventCancelRejected, clientOrderID, origClientOrderID)
	}
	delete(e.orders, origClientOrderID)
	return e.ack(schema.EventCancelAccepted, clientOrderID, origClientOrderID)
}

func (e *Exchange) replaceOrder(action schema.Action) ([]schema.Event, error) {
	price, err := fixed.ParsePrice(action.PriceText)
	if err != nil {
		return nil, err
	}
	orig, ok := e.orders[action.OrigClientOrderID]
	if !ok {
		logs.Warnf("cancel-replace %d rejected: no resting order %d", action.ClientOrderID, action.OrigClientOrderID)
		return []schema.Event{e.ack(schema.EventReplaceRejected, action.ClientOrderID, action.OrigClientOrderID)}, nil
	}
	if action.Qty <= orig.filled {
		logs.Warnf("cancel-replace %d rejected: quantity %d does not exceed filled %d", action.ClientOrderID, action.Qty, orig.filled)
		return []schema.Event{e.ack(schema.EventReplaceRejected, action.ClientOrderID, action.OrigClientOrderID)}, nil
	}

	delete(e.orders, orig.clientOrderID)
	events := []schema.Event{e.ack(schema.EventReplaceAccepted, action.ClientOrderID, action.OrigClientOrderID)}
	events = append(events, e.rest(action.ClientOrderID, price, action.Qty-orig.filled, orig.filled, action.Type)...)
	return events, nil
}

func (e *Exchange) cancelAll(clientOrderID uint64) []schema.Event {
	orders := e.sortedOrders()
	events := make([]schema.Event, 0, len(orders))
	for _, o := range orders {
		events = append(events, e.cancelOrder(clientOrderID, o.clientOrderID))
	}
	return events
}
