// Package codec implements the databin record format: a flat, self-describing
// sequence of typed and keyed records read and written strictly in order.
//
// # Record Format
//
// Every record starts with a one-byte tag and a two-byte key:
//
//	[Tag(1)][Key(2)][Payload]
//
// Tags and payload sizes:
//
//	'(' container open    0 bytes
//	')' container close   0 bytes (key is a placeholder)
//	's' string            Length(2) followed by Length raw bytes
//	'y' u8                1 byte
//	'n' i16, 'q' u16      2 bytes
//	'i' i32, 'u' u32      4 bytes
//	'f' f32               4 bytes
//	'x' i64, 't' u64      8 bytes
//	'd' f64               8 bytes
//
// Keys, lengths and payloads use the host's native byte order. There is no
// stream header, footer or checksum.
//
// # Containers
//
// Containers are open/close marker records that nest other records between
// them. The codec keeps no depth count; callers that care about nesting count
// opens and closes themselves (see package dump).
//
// # Usage
//
// Writing:
//
//	c := codec.New(s)
//	c.OpenContainer(0)
//	c.AppendI32(1, 1234)
//	c.AppendText(2, "abc")
//	c.CloseContainer()
//
// Reading in the same order:
//
//	key, _ := c.EnterContainer()
//	_, v, _ := c.ReadI32()
//	_, s, _ := c.ReadString()
//	c.ExitContainer()
//
// When the next record's type is not known in advance, PeekType reports it
// without consuming it, and ReadValue decodes any record into a Value.
//
// # Error Handling
//
// io.EOF from PeekType or ReadValue means the stream ended at a record
// boundary, the only clean way for a stream to finish. Every other error is
// final for the stream: the read position is undefined afterwards. A
// TypeMismatchError is the exception, it consumes nothing beyond the tag
// so the same record can be read again with the right type.
//
// # Thread Safety
//
// A Codec and its stream must be used from one goroutine at a time.
package codec
