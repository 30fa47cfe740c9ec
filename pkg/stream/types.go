package stream

import (
	"errors"
	"fmt"
	"io"
)

// Stream is the byte transport a codec reads records from or writes records to.
//
// Every call is exact-size: a read either fills the whole buffer or fails, a
// write either transfers every byte or fails. Implementations report
//   - io.EOF when the stream ended cleanly before the first byte of a read
//   - an error wrapping ErrShortTransfer when only part of a read or write
//     completed
//   - an error wrapping ErrTransportFault for anything the underlying device
//     reported
type Stream interface {
	// ReadFull fills p from the stream.
	ReadFull(p []byte) error
	// Skip advances the read position by n bytes without returning them.
	Skip(n int) error
	// WriteFull writes all of p to the stream.
	WriteFull(p []byte) error
	// Close releases resources owned by the stream. It is called once by the
	// owner after all codec operations have stopped.
	Close() error
}

// Errors
var (
	ErrShortTransfer  = errors.New("stream: short transfer")
	ErrTransportFault = errors.New("stream: transport fault")
	ErrClosed         = errors.New("stream: closed")
	ErrNotReadable    = errors.New("stream: not opened for reading")
	ErrNotWritable    = errors.New("stream: not opened for writing")
)

// FileStreamConfig holds configuration for a file backed stream
type FileStreamConfig struct {
	FilePath   string // Path to the data file
	BufferSize int    // Read/write buffer size (0 = bufio default)
	Sync       bool   // fsync on Close for write streams
}

// readError maps the result of a full read of want bytes into the Stream
// error contract.
func readError(n, want int, err error) error {
	if err == nil {
		return nil
	}
	if n == 0 && errors.Is(err, io.EOF) {
		return io.EOF
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: read %d of %d bytes", ErrShortTransfer, n, want)
	}
	return fault(err)
}

// writeError maps the result of a write of want bytes into the Stream error
// contract.
func writeError(n, want int, err error) error {
	if err == nil && n == want {
		return nil
	}
	if err == nil || errors.Is(err, io.ErrShortWrite) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortTransfer, n, want)
	}
	return fault(err)
}

func fault(err error) error {
	if errors.Is(err, ErrTransportFault) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransportFault, err)
}
