package stream

import (
	"fmt"
	"io"
)

// BufferStream is an in-memory Stream. Reads consume data from the front of
// the buffer, writes append to its end.
type BufferStream struct {
	data   []byte
	offset int
	closed bool
}

// NewBufferStream returns a stream reading from data. Pass nil to get an
// empty stream for writing.
func NewBufferStream(data []byte) *BufferStream {
	return &BufferStream{data: data}
}

// ReadFull copies the next len(p) bytes into p
func (b *BufferStream) ReadFull(p []byte) error {
	n, err := b.advance(len(p))
	if err != nil {
		return err
	}
	copy(p, b.data[b.offset-n:b.offset])
	return nil
}

// Skip moves the read offset forward by n bytes
func (b *BufferStream) Skip(n int) error {
	_, err := b.advance(n)
	return err
}

func (b *BufferStream) advance(n int) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if n == 0 {
		return 0, nil
	}

	remaining := len(b.data) - b.offset
	if remaining == 0 {
		return 0, io.EOF
	}
	if remaining < n {
		b.offset = len(b.data)
		return 0, fmt.Errorf("%w: read %d of %d bytes", ErrShortTransfer, remaining, n)
	}

	b.offset += n
	return n, nil
}

// WriteFull appends p to the buffer
func (b *BufferStream) WriteFull(p []byte) error {
	if b.closed {
		return ErrClosed
	}
	b.data = append(b.data, p...)
	return nil
}

// Bytes returns everything written to (or still held by) the buffer
func (b *BufferStream) Bytes() []byte {
	return b.data
}

// Offset returns the current read offset
func (b *BufferStream) Offset() int {
	return b.offset
}

// Len returns the number of unread bytes
func (b *BufferStream) Len() int {
	return len(b.data) - b.offset
}

// Close marks the stream closed. The data stays available through Bytes.
func (b *BufferStream) Close() error {
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	return nil
}
