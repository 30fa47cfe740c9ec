package codec

import (
	"bytes"
	"fmt"
	"io"
)

// chunkSize bounds the buffer used when streaming string payloads
const chunkSize = 32 * 1024

// A string record is written in two steps: the record header carrying a
// 2-byte length, then the raw bytes as a separate transfer. Readers mirror
// that, so neither side needs the payload in one contiguous buffer.

// AppendString writes a string record. With length LenAuto the payload ends
// at the first zero byte of data (or at the end of data); any other length is
// used as is and may cover embedded zero bytes.
func (c *Codec) AppendString(key Key, data []byte, length uint16) error {
	n := int(length)
	if length == LenAuto {
		n = bytes.IndexByte(data, 0)
		if n < 0 {
			n = len(data)
		}
		if n > MaxStringLen {
			return fmt.Errorf("%w: %d bytes", ErrStringTooLong, n)
		}
	} else if n > len(data) {
		return fmt.Errorf("%w: length %d, buffer %d", ErrLengthOutOfRange, n, len(data))
	}

	return c.appendString(key, data[:n])
}

// AppendBytes writes all of data as a string record
func (c *Codec) AppendBytes(key Key, data []byte) error {
	if len(data) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(data))
	}
	return c.appendString(key, data)
}

// AppendText writes s as a string record
func (c *Codec) AppendText(key Key, s string) error {
	return c.AppendBytes(key, []byte(s))
}

func (c *Codec) appendString(key Key, data []byte) error {
	if err := c.beginString(key, uint16(len(data))); err != nil {
		return err
	}
	if err := c.s.WriteFull(data); err != nil {
		return err
	}

	c.wrote(TagString, len(data))
	return nil
}

// AppendStringFrom writes a string record of exactly n bytes taken from r.
// The payload is copied in chunks, never held whole.
func (c *Codec) AppendStringFrom(key Key, r io.Reader, n uint16) error {
	if err := c.beginString(key, n); err != nil {
		return err
	}

	buf := make([]byte, min(int(n), chunkSize))
	for remaining := int(n); remaining > 0; {
		chunk := buf[:min(remaining, len(buf))]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return fmt.Errorf("codec: reading string source: %w", err)
		}
		if err := c.s.WriteFull(chunk); err != nil {
			return err
		}
		remaining -= len(chunk)
	}

	c.wrote(TagString, int(n))
	return nil
}

// beginString writes the header and length of a string record
func (c *Codec) beginString(key Key, n uint16) error {
	buf := c.header(TagString, key, 2)
	order.PutUint16(buf[HeaderSize:], n)

	c.peek = 0
	return c.s.WriteFull(buf)
}

// ReadString reads the next record as a string. The returned slice is newly
// allocated with exactly the recorded length and belongs to the caller.
func (c *Codec) ReadString() (Key, []byte, error) {
	key, n, err := c.readStringHeader()
	if err != nil {
		return 0, nil, err
	}

	buf := make([]byte, n)
	if err := c.readFull(buf); err != nil {
		return 0, nil, err
	}

	c.read(TagString, int(n))
	return key, buf, nil
}

// SkipString consumes the next string record without reading its bytes and
// returns its key and length
func (c *Codec) SkipString() (Key, uint16, error) {
	key, n, err := c.readStringHeader()
	if err != nil {
		return 0, 0, err
	}

	if err := c.skip(int(n)); err != nil {
		return 0, 0, err
	}

	c.read(TagString, int(n))
	return key, n, nil
}

// ReadStringTo copies the next string record's bytes to w in chunks
func (c *Codec) ReadStringTo(w io.Writer) (Key, uint16, error) {
	key, n, err := c.readStringHeader()
	if err != nil {
		return 0, 0, err
	}

	buf := make([]byte, min(int(n), chunkSize))
	for remaining := int(n); remaining > 0; {
		chunk := buf[:min(remaining, len(buf))]
		if err := c.readFull(chunk); err != nil {
			return 0, 0, err
		}
		if _, err := w.Write(chunk); err != nil {
			return 0, 0, fmt.Errorf("codec: writing string sink: %w", err)
		}
		remaining -= len(chunk)
	}

	c.read(TagString, int(n))
	return key, n, nil
}

func (c *Codec) readStringHeader() (Key, uint16, error) {
	key, err := c.readHeader(TagString)
	if err != nil {
		return 0, 0, err
	}

	b := c.scratch[:2]
	if err := c.readFull(b); err != nil {
		return 0, 0, err
	}
	return key, order.Uint16(b), nil
}
