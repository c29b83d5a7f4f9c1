package codec

import (
	"errors"

	"main/internal/schema"
)

var ErrTruncatedPayload = errors.New("codec truncated payload")

// EncodeEvent serializes the payload matching the event's type. Events
// without a payload, such as playback-end markers, encode to an empty
// slice.
func EncodeEvent(dst []byte, ev schema.Event) []byte {
	switch ev.Header.Type {
	case schema.EventBid, schema.EventAsk:
		return EncodeQuote(dst, ev.Quote)
	case schema.EventTrade:
		return EncodeTrade(dst, ev.Trade)
	case schema.EventFill:
		return EncodeFill(dst, ev.Fill)
	case schema.EventNewOrderAccepted, schema.EventNewOrderRejected,
		schema.EventCancelAccepted, schema.EventCancelRejected,
		schema.EventReplaceAccepted, schema.EventReplaceRejected:
		return EncodeOrderAck(dst, ev.Order)
	default:
		return dst[:0]
	}
}

// DecodeEvent rebuilds an event from its header and serialized payload.
func DecodeEvent(header schema.EventHeader, payload []byte) (schema.Event, error) {
	ev := schema.Event{Header: header}
	ok := true
	switch header.Type {
	case schema.EventBid, schema.EventAsk:
		ev.Quote, ok = DecodeQuote(payload)
	case schema.EventTrade:
		ev.Trade, ok = DecodeTrade(payload)
	case schema.EventFill:
		ev.Fill, ok = DecodeFill(payload)
	case schema.EventNewOrderAccepted, schema.EventNewOrderRejected,
		schema.EventCancelAccepted, schema.EventCancelRejected,
		schema.EventReplaceAccepted, schema.EventReplaceRejected:
		ev.Order, ok = DecodeOrderAck(payload)
	}
	if !ok {
		return schema.Event{}, ErrTruncatedPayload
	}
	return ev, nil
}
