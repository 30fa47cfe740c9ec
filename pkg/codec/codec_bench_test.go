//go:build bench
// +build bench

package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/ssargent/databin/pkg/stream"
)

func BenchmarkCodec_AppendScalars(b *testing.B) {
	s := stream.NewBufferStream(make([]byte, 0, 1<<20))
	c := New(s)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.AppendU64(1, uint64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_AppendString(b *testing.B) {
	benchmarks := []struct {
		name string
		data []byte
	}{
		{name: "small", data: []byte("john@example.com")},
		{name: "medium", data: bytes.Repeat([]byte("v"), 1000)},
		{name: "large", data: bytes.Repeat([]byte("v"), 60000)},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c := New(stream.NewBufferStream(nil))
				if err := c.AppendBytes(1, bm.data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_ReadValue(b *testing.B) {
	s := stream.NewBufferStream(nil)
	w := New(s)
	for i := 0; i < 1000; i++ {
		_ = w.OpenContainer(Key(i))
		_ = w.AppendI32(1, int32(i))
		_ = w.AppendText(2, "payload")
		_ = w.CloseContainer()
	}
	data := s.Bytes()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := New(stream.NewBufferStream(data))
		for {
			_, _, err := r.ReadValue()
			if err == io.EOF {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
