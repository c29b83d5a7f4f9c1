package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"main/internal/codec"
	"main/internal/schema"
)

var ErrWriterClosed = errors.New("journal writer closed")

// Writer appends events to journal segments, rotating by size. A backtest
// journal is written once by a single producer, so appends are synchronous
// and callers decide when to flush.
type Writer struct {
	cfg Config

	file     *os.File
	buf      *bufio.Writer
	segSize  int64
	segID    uint64
	segStamp string

	headerBuf   []byte
	payloadBuf  []byte
	checksumBuf [recordChecksumSize]byte

	seq    uint64
	closed bool
}

// NewWriter creates a journal writer and ensures the target directory
// exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		cfg:       cfg,
		segStamp:  time.Now().UTC().Format("20060102-150405"),
		headerBuf: make([]byte, recordHeaderSize),
	}, nil
}

// Append journals one event. The header sequence number is assigned here
// so records are densely numbered in journal order.
func (w *Writer) Append(ev schema.Event) error {
	if w.closed {
		return ErrWriterClosed
	}

	w.seq++
	ev.Header.Seq = w.seq
	if ev.Header.Version == 0 {
		ev.Header.Version = schema.SchemaVersion
	}
	w.payloadBuf = codec.EncodeEvent(w.payloadBuf, ev)

	recordSize := int64(recordHeaderSize + len(w.payloadBuf) + recordChecksumSize)
	if w.file == nil || (w.cfg.SegmentMaxBytes > 0 && w.segSize+recordSize > w.cfg.SegmentMaxBytes) {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	encodeRecordHeader(w.headerBuf, ev.Header, len(w.payloadBuf))
	binary.LittleEndian.PutUint32(w.checksumBuf[:], checksum(w.headerBuf, w.payloadBuf))

	if _, err := w.buf.Write(w.headerBuf); err != nil {
		return err
	}
	if len(w.payloadBuf) > 0 {
		if _, err := w.buf.Write(w.payloadBuf); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(w.checksumBuf[:]); err != nil {
		return err
	}

	w.segSize += recordSize
	return nil
}

// Flush pushes buffered records to the operating system.
func (w *Writer) Flush() error {
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

// Close flushes, syncs, and closes the open segment.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeSegment()
}

func (w *Writer) rotate() error {
	if err := w.closeSegment(); err != nil {
		return err
	}
	for {
		w.segID++
		name := fmt.Sprintf("%s-%s-%06d%s", w.cfg.FilePrefix, w.segStamp, w.segID, segmentExt)
		path := filepath.Join(w.cfg.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return err
		}
		w.file = file
		w.buf = bufio.NewWriterSize(file, w.cfg.BufferSize)
		w.segSize = 0
		return nil
	}
}

func (w *Writer) closeSegment() error {
	if w.file == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	err := w.file.Close()
	w.file = nil
	w.buf = nil
	return err
}
