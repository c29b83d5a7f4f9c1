package schema

// Price is a scaled integer with PriceScale decimal digits.
type Price int64

// PriceScale is the number of decimal digits carried by Price.
const PriceScale = 4

// PriceUnit is the integer value of one whole price unit (one dollar).
const PriceUnit = 10000

// Quantity is a signed share quantity. Positive values are buy-side,
// negative values are sell-side.
type Quantity int64

// OrderType describes the intent of an order.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeBuy
	OrderTypeSell
	OrderTypeCover
	OrderTypeShort
)

var orderTypeNames = [...]string{"unknown", "buy", "sell", "cover", "short"}

func (t OrderType) String() string {
	if int(t) >= len(orderTypeNames) {
		return orderTypeNames[0]
	}
	return orderTypeNames[t]
}

// BuySide reports whether fills against this order type increase the position.
func (t OrderType) BuySide() bool {
	return t == OrderTypeBuy || t == OrderTypeCover
}

// ParseOrderType resolves an order type from its wire name.
func ParseOrderType(s string) (OrderType, bool) {
	for i := 1; i < len(orderTypeNames); i++ {
		if orderTypeNames[i] == s {
			return OrderType(i), true
		}
	}
	return OrderTypeUnknown, false
}

// QuoteUpdate is the payload for EventBid and EventAsk.
type QuoteUpdate struct {
	SymbolID  uint32
	OrderID   uint64
	Qty       Quantity
	Price     Price
	Timestamp int64
}

// TradeTick is the payload for EventTrade. Qty is signed: positive for
// buyer-initiated prints, negative for seller-initiated.
type TradeTick struct {
	SymbolID  uint32
	Qty       Quantity
	Price     Price
	Timestamp int64
}

// FillReport is the payload for EventFill. Qty is signed. RemainingQty is
// reported by the exchange as a magnitude; sign restoration happens in the
// accounting engine.
type FillReport struct {
	ClientOrderID uint64
	Qty           Quantity
	RemainingQty  Quantity
	Price         Price
	Timestamp     int64
}

// OrderReport is the payload for order acknowledgment events. OrigClientOrderID
// is zero except for cancel and cancel-replace acknowledgments.
type OrderReport struct {
	ClientOrderID     uint64
	OrigClientOrderID uint64
	Timestamp         int64
}

// Event is one inbound event. Only the payload field matching Header.Type
// is meaningful.
type Event struct {
	Header EventHeader
	Quote  QuoteUpdate
	Trade  TradeTick
	Fill   FillReport
	Order  OrderReport
}

// Timestamp returns the payload timestamp for the event's type.
func (e Event) Timestamp() int64 {
	switch e.Header.Type {
	case EventBid, EventAsk:
		return e.Quote.Timestamp
	case EventTrade:
		return e.Trade.Timestamp
	case EventFill:
		return e.Fill.Timestamp
	case EventNewOrderAccepted, EventNewOrderRejected,
		EventCancelAccepted, EventCancelRejected,
		EventReplaceAccepted, EventReplaceRejected:
		return e.Order.Timestamp
	default:
		return e.Header.TsEvent
	}
}
