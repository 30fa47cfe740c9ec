package cmd

import (
	"math"

	"github.com/spf13/cobra"
	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/stream"
)

// exampleCmd represents the example command
var exampleCmd = &cobra.Command{
	Use:   "example <file>",
	Short: "Write a sample stream file",
	Long: `Write a small stream exercising nested containers, integers and strings.
Useful as input for "databin dump".

Example:
  databin example sample.bin && databin dump sample.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runExample(args[0], cfg.Dump.BufferSize); err != nil {
			return err
		}
		cmd.Printf("Wrote sample stream to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}

func runExample(path string, bufferSize int) error {
	dst, err := stream.NewFileWriter(stream.FileStreamConfig{
		FilePath:   path,
		BufferSize: bufferSize,
	})
	if err != nil {
		return err
	}

	if err := writeSample(codec.New(dst)); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// writeSample encodes the sample record tree:
//
//	0 { 1: byte 'B', 2 { 3: i32, 4: u64 }, 5 { 6: "abc", 7: "abc123" } }
func writeSample(c *codec.Codec) error {
	steps := []func() error{
		func() error { return c.OpenContainer(0) },
		func() error { return c.AppendU8(1, 'B') },
		func() error { return c.OpenContainer(2) },
		func() error { return c.AppendI32(3, 1234) },
		func() error { return c.AppendU64(4, math.MaxUint64-12) },
		c.CloseContainer,
		func() error { return c.OpenContainer(5) },
		func() error { return c.AppendText(6, "abc") },
		func() error { return c.AppendString(7, []byte("abc123\x00"), codec.LenAuto) },
		c.CloseContainer,
		c.CloseContainer,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
