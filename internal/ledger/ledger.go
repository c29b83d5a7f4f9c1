// Package ledger owns the sets of pending, open, and pending-replace orders
// for one strategy instance, keyed by client order id.
package ledger

import (
	"errors"

	"main/internal/schema"
)

var (
	ErrDuplicateOrderID    = errors.New("client order id already exists")
	ErrUnknownPendingOrder = errors.New("pending order not found")
	ErrUnknownOpenOrder    = errors.New("open order not found")
	ErrReplaceOutOfSync    = errors.New("pending replace entry not found")
)

// Order is the ledger's view of one outstanding order. An order lives in
// exactly one of the three collections while outstanding.
type Order struct {
	ClientOrderID uint64
	Price         schema.Price
	OriginalQty   schema.Quantity
	RemainingQty  schema.Quantity
	Type          schema.OrderType
	PlacedTime    int64
}

// Ledger tracks order lifecycle collections.
type Ledger struct {
	pending        map[uint64]*Order
	open           map[uint64]*Order
	pendingReplace map[uint64]*Order
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		pending:        make(map[uint64]*Order),
		open:           make(map[uint64]*Order),
		pendingReplace: make(map[uint64]*Order),
	}
}

// SubmitPending registers a newly issued order as sent but not yet acked.
// The id must not exist in any collection.
func (l *Ledger) SubmitPending(o *Order) error {
	if l.exists(o.ClientOrderID) {
		return ErrDuplicateOrderID
	}
	l.pending[o.ClientOrderID] = o
	return nil
}

// AcceptNew moves an order from Pending to Open. A missing entry means the
// ledger and the event stream have desynchronized, which is not recoverable.
func (l *Ledger) AcceptNew(id uint64) (*Order, error) {
	o, ok := l.pending[id]
	if !ok {
		return nil, ErrUnknownPendingOrder
	}
	delete(l.pending, id)
	l.open[id] = o
	return o, nil
}

// RejectNew removes an order from Pending. Removing an absent id is a no-op
// since rejection notices may race with other cleanup.
func (l *Ledger) RejectNew(id uint64) {
	delete(l.pending, id)
}

// SubmitReplace registers a cancel-replace request keyed by the new id.
func (l *Ledger) SubmitReplace(o *Order) error {
	if l.exists(o.ClientOrderID) {
		return ErrDuplicateOrderID
	}
	l.pendingReplace[o.ClientOrderID] = o
	return nil
}

// AcceptReplace removes the replaced order from Open and installs the
// replacement. A missing PendingReplace entry leaves nothing to install;
// the returned ErrReplaceOutOfSync must be treated as a warning, not a
// fatal condition, because a replace rejection can race with its
// acceptance.
func (l *Ledger) AcceptReplace(newID, oldID uint64) (*Order, error) {
	delete(l.open, oldID)
	o, ok := l.pendingReplace[newID]
	if !ok {
		return nil, ErrReplaceOutOfSync
	}
	delete(l.pendingReplace, newID)
	l.open[newID] = o
	return o, nil
}

// RejectReplace removes an order from PendingReplace. Idempotent.
func (l *Ledger) RejectReplace(id uint64) {
	delete(l.pendingReplace, id)
}

// AcceptCancel removes the canceled order from Open. Idempotent.
func (l *Ledger) AcceptCancel(origID uint64) {
	delete(l.open, origID)
}

// ApplyFill decrements the open order's remaining quantity. The order is
// removed from Open when the exchange reports zero remaining.
func (l *Ledger) ApplyFill(id uint64, qty, remainingRaw schema.Quantity) (*Order, error) {
	o, ok := l.open[id]
	if !ok {
		return nil, ErrUnknownOpenOrder
	}
	o.RemainingQty -= qty
	if remainingRaw == 0 {
		delete(l.open, id)
	}
	return o, nil
}

// Lookup searches Pending, then Open, then PendingReplace.
func (l *Ledger) Lookup(id uint64) (*Order, bool) {
	if o, ok := l.pending[id]; ok {
		return o, true
	}
	if o, ok := l.open[id]; ok {
		return o, true
	}
	if o, ok := l.pendingReplace[id]; ok {
		return o, true
	}
	return nil, false
}

// Open returns the live Open collection. Callers must not hold the map
// across events.
func (l *Ledger) Open() map[uint64]*Order {
	return l.open
}

// PendingCount returns the number of orders awaiting acknowledgment.
func (l *Ledger) PendingCount() int {
	return len(l.pending)
}

// OpenCount returns the number of acked, not fully filled orders.
func (l *Ledger) OpenCount() int {
	return len(l.open)
}

// PendingReplaceCount returns the number of outstanding replace requests.
func (l *Ledger) PendingReplaceCount() int {
	return len(l.pendingReplace)
}

// Reset clears all collections.
func (l *Ledger) Reset() {
	clear(l.pending)
	clear(l.open)
	clear(l.pendingReplace)
}

func (l *Ledger) exists(id uint64) bool {
	_, ok := l.Lookup(id)
	return ok
}
