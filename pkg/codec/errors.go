package codec

import (
	"errors"
	"fmt"

	"github.com/ssargent/databin/pkg/stream"
)

// Errors
var (
	ErrMalformedTag     = errors.New("codec: malformed tag")
	ErrTypeMismatch     = errors.New("codec: type mismatch")
	ErrUnexpectedEnd    = errors.New("codec: unexpected end of stream")
	ErrUnsupportedTag   = errors.New("codec: tag not supported on this path")
	ErrPayloadSize      = errors.New("codec: payload size does not match tag")
	ErrStringTooLong    = errors.New("codec: string longer than 65535 bytes")
	ErrLengthOutOfRange = errors.New("codec: string length exceeds buffer")

	// Transport level failures, wrapped unchanged from the stream
	ErrShortTransfer  = stream.ErrShortTransfer
	ErrTransportFault = stream.ErrTransportFault
)

// MalformedTagError reports a tag byte that is not a known record tag
type MalformedTagError struct {
	Byte byte
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("codec: malformed tag 0x%02x", e.Byte)
}

func (e *MalformedTagError) Unwrap() error {
	return ErrMalformedTag
}

// TypeMismatchError reports a typed read that found a different tag
type TypeMismatchError struct {
	Expected Tag
	Actual   Tag
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("codec: type mismatch: expected %s (%q), found %s (%q)",
		e.Expected, byte(e.Expected), e.Actual, byte(e.Actual))
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
