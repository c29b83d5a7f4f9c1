package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const FillPayloadSize = 40

// EncodeFill serializes a fill report into a fixed-size payload.
func EncodeFill(dst []byte, f schema.FillReport) []byte {
	if cap(dst) < FillPayloadSize {
		dst = make([]byte, FillPayloadSize)
	} else {
		dst = dst[:FillPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], f.ClientOrderID)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(f.Qty))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(f.RemainingQty))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(f.Price))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(f.Timestamp))

	return dst
}

// DecodeFill parses a fixed-size fill payload.
func DecodeFill(src []byte) (schema.FillReport, bool) {
	if len(src) < FillPayloadSize {
		return schema.FillReport{}, false
	}
	return schema.FillReport{
		ClientOrderID: binary.LittleEndian.Uint64(src[0:8]),
		Qty:           schema.Quantity(int64(binary.LittleEndian.Uint64(src[8:16]))),
		RemainingQty:  schema.Quantity(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Price:         schema.Price(int64(binary.LittleEndian.Uint64(src[24:32]))),
		Timestamp:     int64(binary.LittleEndian.Uint64(src[32:40])),
	}, true
}
