package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const QuotePayloadSize = 36

// EncodeQuote serializes a quote update into a fixed-size payload.
func EncodeQuote(dst []byte, q schema.QuoteUpdate) []byte {
	if cap(dst) < QuotePayloadSize {
		dst = make([]byte, QuotePayloadSize)
	} else {
		dst = dst[:QuotePayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], q.SymbolID)
	binary.LittleEndian.PutUint64(dst[4:12], q.OrderID)
	binary.LittleEndian.PutUint64(dst[12:20], uint64(q.Qty))
	binary.LittleEndian.PutUint64(dst[20:28], uint64(q.Price))
	binary.LittleEndian.PutUint64(dst[28:36], uint64(q.Timestamp))

	return dst
}

// DecodeQuote parses a fixed-size quote payload.
func DecodeQuote(src []byte) (schema.QuoteUpdate, bool) {
	if len(src) < QuotePayloadSize {
		return schema.QuoteUpdate{}, false
	}
	return schema.QuoteUpdate{
		SymbolID:  binary.LittleEndian.Uint32(src[0:4]),
		OrderID:   binary.LittleEndian.Uint64(src[4:12]),
		Qty:       schema.Quantity(int64(binary.LittleEndian.Uint64(src[12:20]))),
		Price:     schema.Price(int64(binary.LittleEndian.Uint64(src[20:28]))),
		Timestamp: int64(binary.LittleEndian.Uint64(src[28:36])),
	}, true
}
