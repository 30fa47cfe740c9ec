// Package dump renders a databin stream as an indented text tree.
//
// Each record is printed on its own line, indented by its container depth:
//
//	  0: container:
//	    1:      byte: 66 (0x42)
//	    2: container:
//	      3:       i32: 1234 (0x4d2)
//
// Container close records are not printed; they only reduce the depth.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ssargent/databin/pkg/codec"
)

// ErrUnbalanced is returned in strict mode for a close without a matching
// open, or for containers still open at the end of the stream
var ErrUnbalanced = errors.New("dump: unbalanced container")

// Options controls the output layout
type Options struct {
	IndentWidth int  // Spaces per container level
	KeyWidth    int  // Minimum width of the key column
	TypeWidth   int  // Minimum width of the type column
	Hex         bool // Print integers in hex too
	Strict      bool // Fail on unbalanced containers instead of tolerating them
	Logger      zerolog.Logger
}

// DefaultOptions returns the standard dump layout
func DefaultOptions() Options {
	return Options{
		IndentWidth: 2,
		KeyWidth:    3,
		TypeWidth:   9,
		Hex:         true,
		Logger:      zerolog.Nop(),
	}
}

// Stats summarizes a dumped stream
type Stats struct {
	Records  int // Records read, closes included
	MaxDepth int // Deepest container nesting seen
}

// Dumper prints records to an io.Writer while tracking container depth
type Dumper struct {
	w     *bufio.Writer
	opts  Options
	depth int
	stats Stats
}

// New creates a dumper writing to w
func New(w io.Writer, opts Options) *Dumper {
	return &Dumper{
		w:    bufio.NewWriter(w),
		opts: opts,
	}
}

// Dump reads records from c until the stream ends cleanly. A clean end
// returns nil; any read failure is returned wrapped with the record number.
func (d *Dumper) Dump(c *codec.Codec) error {
	err := d.dump(c)
	if flushErr := d.w.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func (d *Dumper) dump(c *codec.Codec) error {
	for {
		key, v, err := c.ReadValue()
		if errors.Is(err, io.EOF) {
			return d.finish()
		}
		if err != nil {
			return fmt.Errorf("reading record %d: %w", d.stats.Records, err)
		}

		d.stats.Records++
		if err := d.WriteRecord(key, v); err != nil {
			return err
		}
	}
}

func (d *Dumper) finish() error {
	if d.depth == 0 {
		return nil
	}
	if d.opts.Strict {
		return fmt.Errorf("%w: %d container(s) left open", ErrUnbalanced, d.depth)
	}
	d.opts.Logger.Warn().Int("depth", d.depth).Msg("stream ended inside a container")
	return nil
}

// WriteRecord prints one record and updates the depth
func (d *Dumper) WriteRecord(key codec.Key, v codec.Value) error {
	if _, ok := v.(codec.ContainerClose); ok {
		return d.exit()
	}

	d.opts.Logger.Debug().Uint16("key", uint16(key)).Str("tag", v.Tag().String()).Int("depth", d.depth).Msg("record")

	indent := strings.Repeat(" ", d.depth*d.opts.IndentWidth)
	if _, err := fmt.Fprintf(d.w, "%s% *d: ", indent, d.opts.KeyWidth, key); err != nil {
		return err
	}

	if _, ok := v.(codec.ContainerOpen); ok {
		d.depth++
		d.stats.MaxDepth = max(d.stats.MaxDepth, d.depth)
		_, err := io.WriteString(d.w, "container:\n")
		return err
	}

	_, err := fmt.Fprintf(d.w, "%*s: %s\n", d.opts.TypeWidth, v.Tag(), d.format(v))
	return err
}

func (d *Dumper) exit() error {
	if d.depth > 0 {
		d.depth--
		return nil
	}
	if d.opts.Strict {
		return fmt.Errorf("%w: close at depth 0 (record %d)", ErrUnbalanced, d.stats.Records)
	}
	d.opts.Logger.Warn().Int("record", d.stats.Records).Msg("container close at depth 0")
	return nil
}

func (d *Dumper) format(v codec.Value) string {
	switch v := v.(type) {
	case codec.String:
		return string(v)
	case codec.F32:
		return fmt.Sprintf("%f", float32(v))
	case codec.F64:
		return fmt.Sprintf("%f", float64(v))
	case codec.U8:
		return d.integer(uint8(v), uint64(v))
	case codec.I16:
		return d.integer(int16(v), uint64(uint16(v)))
	case codec.U16:
		return d.integer(uint16(v), uint64(v))
	case codec.I32:
		return d.integer(int32(v), uint64(uint32(v)))
	case codec.U32:
		return d.integer(uint32(v), uint64(v))
	case codec.I64:
		return d.integer(int64(v), uint64(v))
	case codec.U64:
		return d.integer(uint64(v), uint64(v))
	}
	return fmt.Sprintf("%v", v)
}

// integer prints n, followed by its two's complement bits in hex
func (d *Dumper) integer(n any, bits uint64) string {
	if !d.opts.Hex {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d (0x%x)", n, bits)
}

// Depth returns the current container depth
func (d *Dumper) Depth() int {
	return d.depth
}

// Stats returns counters for everything dumped so far
func (d *Dumper) Stats() Stats {
	return d.stats
}
