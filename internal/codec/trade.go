package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const TradePayloadSize = 28

// EncodeTrade serializes a trade tick into a fixed-size payload.
func EncodeTrade(dst []byte, t schema.TradeTick) []byte {
	if cap(dst) < TradePayloadSize {
		dst = make([]byte, TradePayloadSize)
	} else {
		dst = dst[:TradePayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], t.SymbolID)
	binary.LittleEndian.PutUint64(dst[4:12], uint64(t.Qty))
	binary.LittleEndian.PutUint64(dst[12:20], uint64(t.Price))
	binary.LittleEndian.PutUint64(dst[20:28], uint64(t.Timestamp))

	return dst
}

// DecodeTrade parses a fixed-size trade payload.
func DecodeTrade(src []byte) (schema.TradeTick, bool) {
	if len(src) < TradePayloadSize {
		return schema.TradeTick{}, false
	}
	return schema.TradeTick{
		SymbolID:  binary.LittleEndian.Uint32(src[0:4]),
		Qty:       schema.Quantity(int64(binary.LittleEndian.Uint64(src[4:12]))),
		Price:     schema.Price(int64(binary.LittleEndian.Uint64(src[12:20]))),
		Timestamp: int64(binary.LittleEndian.Uint64(src[20:28])),
	}, true
}
