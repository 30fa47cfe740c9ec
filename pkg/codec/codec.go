package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/ssargent/databin/pkg/stream"
)

// Observer is told about every record a Codec reads or writes successfully.
// payloadSize excludes the record header.
type Observer interface {
	RecordWritten(tag Tag, payloadSize int)
	RecordRead(tag Tag, payloadSize int)
}

// Option configures a Codec
type Option func(*Codec)

// WithObserver reports every completed record to o
func WithObserver(o Observer) Option {
	return func(c *Codec) {
		c.observer = o
	}
}

// Codec reads and writes records on a single stream. It owns nothing but its
// one-tag lookahead; the stream stays open when the codec is dropped.
//
// A Codec is not safe for concurrent use. After any error other than io.EOF
// from PeekType or ReadValue the stream position is undefined.
type Codec struct {
	s        stream.Stream
	peek     Tag // 0 when nothing has been peeked
	scratch  [HeaderSize + 8]byte
	observer Observer
}

// New binds a codec to s
func New(s stream.Stream, opts ...Option) *Codec {
	c := &Codec{s: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PeekType returns the tag of the next record without consuming the record.
// Only the first call after a read or append touches the stream. It returns
// io.EOF when the stream ends cleanly at a record boundary.
func (c *Codec) PeekType() (Tag, error) {
	if c.peek != 0 {
		return c.peek, nil
	}

	b := c.scratch[:1]
	if err := c.s.ReadFull(b); err != nil {
		return 0, err
	}

	tag := Tag(b[0])
	if !tag.Valid() {
		return 0, &MalformedTagError{Byte: b[0]}
	}

	c.peek = tag
	return tag, nil
}

// Append writes a fixed-size record. payload must be exactly TypeSize(tag)
// bytes in native byte order. Strings go through AppendString.
func (c *Codec) Append(key Key, tag Tag, payload []byte) error {
	size, ok := TypeSize(tag)
	if !ok {
		return fmt.Errorf("%w: %s (%q)", ErrUnsupportedTag, tag, byte(tag))
	}
	if len(payload) != size {
		return fmt.Errorf("%w: %s wants %d bytes, got %d", ErrPayloadSize, tag, size, len(payload))
	}

	buf := c.header(tag, key, size)
	copy(buf[HeaderSize:], payload)
	return c.write(tag, buf, size)
}

func (c *Codec) appendFixed(key Key, v fixedValue) error {
	tag := v.Tag()
	size, _ := TypeSize(tag)

	buf := c.header(tag, key, size)
	v.put(buf[HeaderSize:])
	return c.write(tag, buf, size)
}

// header lays out tag and key in scratch and returns the slice that will hold
// the record once size payload bytes are added.
func (c *Codec) header(tag Tag, key Key, size int) []byte {
	buf := c.scratch[:HeaderSize+size]
	buf[0] = byte(tag)
	order.PutUint16(buf[1:3], uint16(key))
	return buf
}

func (c *Codec) write(tag Tag, buf []byte, payloadSize int) error {
	c.peek = 0
	if err := c.s.WriteFull(buf); err != nil {
		return err
	}
	c.wrote(tag, payloadSize)
	return nil
}

// Read consumes a fixed-size record whose tag must be expected. The payload is
// copied into dst, which must hold at least TypeSize(expected) bytes, or
// skipped when dst is nil. On a type mismatch nothing past the tag is
// consumed and the record can be read again with the right tag.
func (c *Codec) Read(expected Tag, dst []byte) (Key, error) {
	size, ok := TypeSize(expected)
	if !ok {
		return 0, fmt.Errorf("%w: %s (%q)", ErrUnsupportedTag, expected, byte(expected))
	}
	if dst != nil && len(dst) < size {
		return 0, fmt.Errorf("%w: %s wants %d bytes, buffer holds %d", ErrPayloadSize, expected, size, len(dst))
	}

	key, err := c.readHeader(expected)
	if err != nil {
		return 0, err
	}

	if dst != nil {
		err = c.readFull(dst[:size])
	} else {
		err = c.skip(size)
	}
	if err != nil {
		return 0, err
	}

	c.read(expected, size)
	return key, nil
}

// Skip consumes the next record, which must be tagged expected, without
// materializing its payload. It accepts strings too.
func (c *Codec) Skip(expected Tag) (Key, error) {
	if expected == TagString {
		key, _, err := c.SkipString()
		return key, err
	}
	return c.Read(expected, nil)
}

func (c *Codec) readFixed(tag Tag) (Key, Value, error) {
	size, ok := TypeSize(tag)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s (%q)", ErrUnsupportedTag, tag, byte(tag))
	}

	key, err := c.readHeader(tag)
	if err != nil {
		return 0, nil, err
	}

	buf := c.scratch[:size]
	if err := c.readFull(buf); err != nil {
		return 0, nil, err
	}

	c.read(tag, size)
	return key, decodeFixed(tag, buf), nil
}

// readHeader checks the next tag against expected and consumes tag and key
func (c *Codec) readHeader(expected Tag) (Key, error) {
	actual, err := c.PeekType()
	if err != nil {
		return 0, err
	}
	if actual != expected {
		return 0, &TypeMismatchError{Expected: expected, Actual: actual}
	}

	b := c.scratch[:2]
	if err := c.readFull(b); err != nil {
		return 0, err
	}

	c.peek = 0
	return Key(order.Uint16(b)), nil
}

func (c *Codec) readFull(p []byte) error {
	return midRecord(c.s.ReadFull(p))
}

func (c *Codec) skip(n int) error {
	return midRecord(c.s.Skip(n))
}

// midRecord turns a clean end of stream inside a record into ErrUnexpectedEnd
func midRecord(err error) error {
	if err != nil && errors.Is(err, io.EOF) {
		return ErrUnexpectedEnd
	}
	return err
}

func (c *Codec) wrote(tag Tag, size int) {
	if c.observer != nil {
		c.observer.RecordWritten(tag, size)
	}
}

func (c *Codec) read(tag Tag, size int) {
	if c.observer != nil {
		c.observer.RecordRead(tag, size)
	}
}

// AppendValue writes v as a record under key
func (c *Codec) AppendValue(key Key, v Value) error {
	switch v := v.(type) {
	case String:
		return c.AppendBytes(key, v)
	case fixedValue:
		return c.appendFixed(key, v)
	case nil:
		return fmt.Errorf("%w: nil value", ErrUnsupportedTag)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedTag, v)
	}
}

// ReadValue reads the next record whatever its tag. io.EOF means the stream
// ended cleanly before the record.
func (c *Codec) ReadValue() (Key, Value, error) {
	tag, err := c.PeekType()
	if err != nil {
		return 0, nil, err
	}

	if tag == TagString {
		key, b, err := c.ReadString()
		if err != nil {
			return 0, nil, err
		}
		return key, String(b), nil
	}
	return c.readFixed(tag)
}

func (c *Codec) AppendU8(key Key, v uint8) error    { return c.appendFixed(key, U8(v)) }
func (c *Codec) AppendI16(key Key, v int16) error   { return c.appendFixed(key, I16(v)) }
func (c *Codec) AppendU16(key Key, v uint16) error  { return c.appendFixed(key, U16(v)) }
func (c *Codec) AppendI32(key Key, v int32) error   { return c.appendFixed(key, I32(v)) }
func (c *Codec) AppendU32(key Key, v uint32) error  { return c.appendFixed(key, U32(v)) }
func (c *Codec) AppendI64(key Key, v int64) error   { return c.appendFixed(key, I64(v)) }
func (c *Codec) AppendU64(key Key, v uint64) error  { return c.appendFixed(key, U64(v)) }
func (c *Codec) AppendF32(key Key, v float32) error { return c.appendFixed(key, F32(v)) }
func (c *Codec) AppendF64(key Key, v float64) error { return c.appendFixed(key, F64(v)) }

func (c *Codec) ReadU8() (Key, uint8, error) {
	key, v, err := c.readFixed(TagU8)
	if err != nil {
		return 0, 0, err
	}
	return key, uint8(v.(U8)), nil
}

func (c *Codec) ReadI16() (Key, int16, error) {
	key, v, err := c.readFixed(TagI16)
	if err != nil {
		return 0, 0, err
	}
	return key, int16(v.(I16)), nil
}

func (c *Codec) ReadU16() (Key, uint16, error) {
	key, v, err := c.readFixed(TagU16)
	if err != nil {
		return 0, 0, err
	}
	return key, uint16(v.(U16)), nil
}

func (c *Codec) ReadI32() (Key, int32, error) {
	key, v, err := c.readFixed(TagI32)
	if err != nil {
		return 0, 0, err
	}
	return key, int32(v.(I32)), nil
}

func (c *Codec) ReadU32() (Key, uint32, error) {
	key, v, err := c.readFixed(TagU32)
	if err != nil {
		return 0, 0, err
	}
	return key, uint32(v.(U32)), nil
}

func (c *Codec) ReadI64() (Key, int64, error) {
	key, v, err := c.readFixed(TagI64)
	if err != nil {
		return 0, 0, err
	}
	return key, int64(v.(I64)), nil
}

func (c *Codec) ReadU64() (Key, uint64, error) {
	key, v, err := c.readFixed(TagU64)
	if err != nil {
		return 0, 0, err
	}
	return key, uint64(v.(U64)), nil
}

func (c *Codec) ReadF32() (Key, float32, error) {
	key, v, err := c.readFixed(TagF32)
	if err != nil {
		return 0, 0, err
	}
	return key, float32(v.(F32)), nil
}

func (c *Codec) ReadF64() (Key, float64, error) {
	key, v, err := c.readFixed(TagF64)
	if err != nil {
		return 0, 0, err
	}
	return key, float64(v.(F64)), nil
}
