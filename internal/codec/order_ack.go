package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const OrderAckPayloadSize = 24

// EncodeOrderAck serializes an order acknowledgment into a fixed-size payload.
func EncodeOrderAck(dst []byte, r schema.OrderReport) []byte {
	if cap(dst) < OrderAckPayloadSize {
		dst = make([]byte, OrderAckPayloadSize)
	} else {
		dst = dst[:OrderAckPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], r.ClientOrderID)
	binary.LittleEndian.PutUint64(dst[8:16], r.OrigClientOrderID)
	binary.LittleEndian.PutUint64(dst[16:24], uint64(r.Timestamp))

	return dst
}

// DecodeOrderAck parses a fixed-size order acknowledgment payload.
func DecodeOrderAck(src []byte) (schema.OrderReport, bool) {
	if len(src) < OrderAckPayloadSize {
		return schema.OrderReport{}, false
	}
	return schema.OrderReport{
		ClientOrderID:     binary.LittleEndian.Uint64(src[0:8]),
		OrigClientOrderID: binary.LittleEndian.Uint64(src[8:16]),
		Timestamp:         int64(binary.LittleEndian.Uint64(src[16:24])),
	}, true
}
