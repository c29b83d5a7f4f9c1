// Package book defines the read-only market snapshot consumed by the
// strategy runtime. Price-level maintenance belongs to an external book
// implementation; TopOfBook is the minimal tracker used by the simulator
// and tests.
package book

import "main/internal/schema"

// Quote is the displayed top of one book side.
type Quote struct {
	OrderID   uint64
	Qty       schema.Quantity
	Price     schema.Price
	Timestamp int64
}

// Trade is the most recent trade print. Qty is signed.
type Trade struct {
	Qty       schema.Quantity
	Price     schema.Price
	Timestamp int64
}

// View is the snapshot surface the runtime reads after each market event.
type View interface {
	TopBidPrice() schema.Price
	TopAskPrice() schema.Price
	MidpointPrice() schema.Price
	Spread() schema.Price
	BidCount() int
	AskCount() int
	BidVolume() schema.Quantity
	AskVolume() schema.Quantity
	LastTrade() (Trade, bool)
	SessionOpen() int64
	SessionClose() int64
}

// Session bounds a trading day in milliseconds since midnight.
type Session struct {
	Open  int64
	Close int64
}

// MillisPerSecond converts session offsets expressed in seconds.
const MillisPerSecond int64 = 1000

// TopOfBook tracks the displayed top of each side from a top-of-book feed.
// Each quote update replaces the side it belongs to; a zero quantity clears
// the side.
type TopOfBook struct {
	session  Session
	bid      bookSide
	ask      bookSide
	trade    Trade
	hasTrade bool
}

type bookSide struct {
	quote  Quote
	orders int
	live   bool
}

// NewTopOfBook creates an empty tracker for one session.
func NewTopOfBook(session Session) *TopOfBook {
	return &TopOfBook{session: session}
}

// ApplyBid records a bid-side update and returns the resulting top quote.
func (b *TopOfBook) ApplyBid(q schema.QuoteUpdate) Quote {
	return b.applySide(&b.bid, q)
}

// ApplyAsk records an ask-side update and returns the resulting top quote.
func (b *TopOfBook) ApplyAsk(q schema.QuoteUpdate) Quote {
	return b.applySide(&b.ask, q)
}

func (b *TopOfBook) applySide(side *bookSide, q schema.QuoteUpdate) Quote {
	if q.Qty == 0 {
		side.live = false
		side.orders = 0
		side.quote = Quote{Timestamp: q.Timestamp}
		return side.quote
	}
	if side.live && side.quote.Price == q.Price && side.quote.OrderID != q.OrderID {
		side.orders++
	} else {
		side.orders = 1
	}
	side.quote = Quote{OrderID: q.OrderID, Qty: q.Qty, Price: q.Price, Timestamp: q.Timestamp}
	side.live = true
	return side.quote
}

// ApplyTrade records a trade print and returns it.
func (b *TopOfBook) ApplyTrade(t schema.TradeTick) Trade {
	b.trade = Trade{Qty: t.Qty, Price: t.Price, Timestamp: t.Timestamp}
	b.hasTrade = true
	return b.trade
}

func (b *TopOfBook) TopBidPrice() schema.Price {
	return b.bid.quote.Price
}

func (b *TopOfBook) TopAskPrice() schema.Price {
	return b.ask.quote.Price
}

// MidpointPrice is the average of the two displayed tops. With one side
// missing it degrades to the surviving side's price.
func (b *TopOfBook) MidpointPrice() schema.Price {
	switch {
	case b.bid.live && b.ask.live:
		return (b.bid.quote.Price + b.ask.quote.Price) / 2
	case b.bid.live:
		return b.bid.quote.Price
	case b.ask.live:
		return b.ask.quote.Price
	default:
		return 0
	}
}

func (b *TopOfBook) Spread() schema.Price {
	if !b.bid.live || !b.ask.live {
		return 0
	}
	return b.ask.quote.Price - b.bid.quote.Price
}

func (b *TopOfBook) BidCount() int {
	return b.bid.orders
}

func (b *TopOfBook) AskCount() int {
	return b.ask.orders
}

func (b *TopOfBook) BidVolume() schema.Quantity {
	return b.bid.quote.Qty
}

func (b *TopOfBook) AskVolume() schema.Quantity {
	return b.ask.quote.Qty
}

func (b *TopOfBook) LastTrade() (Trade, bool) {
	return b.trade, b.hasTrade
}

func (b *TopOfBook) SessionOpen() int64 {
	return b.session.Open
}

func (b *TopOfBook) SessionClose() int64 {
	return b.session.Close
}

// TopBid returns the displayed bid quote.
func (b *TopOfBook) TopBid() (Quote, bool) {
	return b.bid.quote, b.bid.live
}

// TopAsk returns the displayed ask quote.
func (b *TopOfBook) TopAsk() (Quote, bool) {
	return b.ask.quote, b.ask.live
}

// Reset clears both sides and the last trade. The session is kept.
func (b *TopOfBook) Reset() {
	session := b.session
	*b = TopOfBook{session: session}
}
