package schema

// ActionKind defines the category of an outbound action.
type ActionKind uint16

const (
	ActionUnknown ActionKind = iota
	ActionNewOrder
	ActionCancel
	ActionCancelReplace
	ActionCancelAll
)

var actionKindNames = [...]string{"??", "NO", "CO", "CR", "CA"}

func (k ActionKind) String() string {
	if int(k) >= len(actionKindNames) {
		return actionKindNames[0]
	}
	return actionKindNames[k]
}

// Action is one outbound request to the exchange. Fields that do not apply
// to the kind are zero. PriceText is the fixed-point rendering of the limit
// price; market orders carry price zero through the same path.
type Action struct {
	Kind              ActionKind
	ClientOrderID     uint64
	OrigClientOrderID uint64
	PriceText         string
	Qty               Quantity
	Type              OrderType
}
