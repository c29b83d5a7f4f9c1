// Package signal appends strategy signals to a text log, one line per
// signal, timestamped as HH:MM:SS.mmm from milliseconds since midnight.
package signal

import (
	"bufio"
	"fmt"
	"os"

	"github.com/yanun0323/errors"
)

const header = "timestamp,signal\n"

// Log is an append-only signal log with a scoped write handle. The handle
// is released on Close and reacquired on Reopen; there is no reliance on
// finalizer timing.
type Log struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// Open truncates and opens the signal log at path and writes the header.
func Open(path string) (*Log, error) {
	l := &Log{path: path}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) open() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "open signal log")
	}
	w := bufio.NewWriter(file)
	if _, err := w.WriteString(header); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write signal log header")
	}
	l.file = file
	l.w = w
	return nil
}

// Write appends one signal line.
func (l *Log) Write(tsMillis int64, signal string) error {
	if l.file == nil {
		return errors.New("signal log is closed")
	}
	if _, err := fmt.Fprintf(l.w, "%s,%s\n", FormatMillis(tsMillis), signal); err != nil {
		return errors.Wrap(err, "write signal")
	}
	return nil
}

// Close flushes and releases the write handle. Safe to call twice.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	flushErr := l.w.Flush()
	closeErr := l.file.Close()
	l.file = nil
	l.w = nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "flush signal log")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "close signal log")
	}
	return nil
}

// Reopen closes the current handle and starts a fresh log at the same path.
func (l *Log) Reopen() error {
	if err := l.Close(); err != nil {
		return err
	}
	return l.open()
}

// FormatMillis renders milliseconds since midnight as HH:MM:SS.mmm.
func FormatMillis(t int64) string {
	if t < 0 {
		t = 0
	}
	ms := t % 1000
	s := t / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", (s/3600)%24, (s/60)%60, s%60, ms)
}
