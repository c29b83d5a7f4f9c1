package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"main/internal/codec"
	"main/internal/schema"
)

var (
	ErrChecksumMismatch = errors.New("journal checksum mismatch")
	ErrPayloadTooLarge  = errors.New("journal payload too large")
)

const maxPayloadSize = 1 << 20

// ReaderOptions controls record decoding.
type ReaderOptions struct {
	DisableChecksum bool
}

// Reader decodes journal records sequentially.
type Reader struct {
	r         *bufio.Reader
	opts      ReaderOptions
	headerBuf []byte
	payload   []byte
}

// NewReader wraps an io.Reader with journal decoding.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		r:         bufio.NewReader(r),
		opts:      opts,
		headerBuf: make([]byte, recordHeaderSize),
	}
}

// Next returns the next journaled event, or io.EOF at a clean end of
// stream.
func (r *Reader) Next() (schema.Event, error) {
	n, err := io.ReadFull(r.r, r.headerBuf)
	if err != nil {
		if err == io.EOF && n == 0 {
			return schema.Event{}, io.EOF
		}
		return schema.Event{}, err
	}

	header, payloadLen, err := decodeRecordHeader(r.headerBuf)
	if err != nil {
		return schema.Event{}, err
	}
	if payloadLen > maxPayloadSize {
		return schema.Event{}, ErrPayloadTooLarge
	}

	if payloadLen > 0 {
		if cap(r.payload) < int(payloadLen) {
			r.payload = make([]byte, payloadLen)
		}
		r.payload = r.payload[:payloadLen]
		if _, err := io.ReadFull(r.r, r.payload); err != nil {
			return schema.Event{}, err
		}
	} else {
		r.payload = r.payload[:0]
	}

	var checksumBuf [recordChecksumSize]byte
	if _, err := io.ReadFull(r.r, checksumBuf[:]); err != nil {
		return schema.Event{}, err
	}

	if !r.opts.DisableChecksum {
		expected := binary.LittleEndian.Uint32(checksumBuf[:])
		if sum := checksum(r.headerBuf, r.payload); sum != expected {
			return schema.Event{}, ErrChecksumMismatch
		}
	}

	return codec.DecodeEvent(header, r.payload)
}
