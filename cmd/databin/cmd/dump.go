package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/stream"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a stream file as an indented record tree",
	Long: `Print every record of a databin stream file, one per line, indented by
container depth. Integers are also shown in hex.

Example:
  databin dump capture.bin
  databin dump --strict capture.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := dumpOptions(cfg, logger)
		if cmd.Flags().Changed("strict") {
			opts.Strict, _ = cmd.Flags().GetBool("strict")
		}
		if cmd.Flags().Changed("no-hex") {
			noHex, _ := cmd.Flags().GetBool("no-hex")
			opts.Hex = !noHex
		}
		return runDump(args[0], cmd.OutOrStdout(), opts, cfg.Dump.BufferSize)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("strict", false, "Fail on unbalanced containers")
	dumpCmd.Flags().Bool("no-hex", false, "Print integers in decimal only")
}

// runDump prints the stream stored in path to out
func runDump(path string, out io.Writer, opts dump.Options, bufferSize int) error {
	src, err := stream.NewFileReader(stream.FileStreamConfig{
		FilePath:   path,
		BufferSize: bufferSize,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	d := dump.New(out, opts)
	if err := d.Dump(codec.New(src)); err != nil {
		return err
	}

	stats := d.Stats()
	opts.Logger.Debug().Str("file", path).Int("records", stats.Records).Int("max_depth", stats.MaxDepth).Msg("dump complete")
	return nil
}
