//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ssargent/databin/pkg/stream"
)

// FuzzCodec_StringRoundTrip tests string encode/decode with random inputs
func FuzzCodec_StringRoundTrip(f *testing.F) {
	f.Add(uint16(0), []byte(""))
	f.Add(uint16(1), []byte("abc"))
	f.Add(uint16(65535), []byte{0x00, 0x01, 0x00})

	f.Fuzz(func(t *testing.T, key uint16, data []byte) {
		if len(data) > MaxStringLen {
			t.Skip("Input too large for a string record")
		}

		s := stream.NewBufferStream(nil)
		if err := New(s).AppendBytes(Key(key), data); err != nil {
			t.Fatalf("AppendBytes failed: %v", err)
		}

		gotKey, got, err := New(stream.NewBufferStream(s.Bytes())).ReadString()
		if err != nil {
			t.Fatalf("ReadString failed: %v", err)
		}
		if gotKey != Key(key) {
			t.Errorf("Key mismatch: got %d, want %d", gotKey, key)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("Value mismatch: got %q, want %q", got, data)
		}
	})
}

// FuzzCodec_ReadValue feeds arbitrary bytes to the decoder, which must fail
// cleanly instead of panicking
func FuzzCodec_ReadValue(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{'(', 0, 0, ')', 0, 0})
	f.Add([]byte{'s', 1, 0, 200, 0, 'a'})
	f.Add([]byte{'z'})

	f.Fuzz(func(t *testing.T, data []byte) {
		c := New(stream.NewBufferStream(data))
		for i := 0; i <= len(data); i++ {
			_, _, err := c.ReadValue()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				return
			}
		}
		t.Fatalf("decoded more records than bytes in %q", data)
	})
}
