// Package packet reads and writes fixed-layout headers in network byte
// order: the frame server's length prefixes and JPEG marker segments.
package packet

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var networkOrder = binary.BigEndian

// Writer fills a fixed-size buffer front to back. The integer writers panic
// on overflow, like slice indexing; size the buffer for the header up front.
type Writer struct {
	buffer []byte
	offset int
}

func NewWriter(buffer []byte) *Writer {
	return &Writer{buffer, 0}
}

func NewWriterSize(n int) *Writer {
	return NewWriter(make([]byte, n))
}

func (w *Writer) WriteUint16(v uint16) {
	networkOrder.PutUint16(w.buffer[w.offset:], v)
	w.offset += 2
}

func (w *Writer) WriteUint32(v uint32) {
	networkOrder.PutUint32(w.buffer[w.offset:], v)
	w.offset += 4
}

// Write the given bytes, if there is enough room.
func (w *Writer) WriteSlice(p []byte) error {
	if err := w.CheckCapacity(len(p)); err != nil {
		return err
	}
	w.offset += copy(w.buffer[w.offset:], p)
	return nil
}

func (w *Writer) WriteString(s string) error {
	if err := w.CheckCapacity(len(s)); err != nil {
		return err
	}
	w.offset += copy(w.buffer[w.offset:], s)
	return nil
}

// Return the room left in the buffer.
func (w *Writer) Remaining() int {
	return len(w.buffer) - w.offset
}

func (w *Writer) CheckCapacity(needed int) error {
	if w.Remaining() < needed {
		return errors.Errorf("%d bytes available, %d needed", w.Remaining(), needed)
	}
	return nil
}

// Return a slice of the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buffer[0:w.offset]
}
