package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/storage"
	"github.com/ssargent/databin/pkg/stream"
)

// storeCmd groups the commands working on the stream store
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage streams kept in the local store",
	Long: `Store, list, dump and delete streams kept in the pebble database under
the data directory.

Examples:
  databin store put capture.bin
  databin store list
  databin store dump 2SwmKiBKPSMZHVK4ugMyHrZSdBa`,
}

var storePutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Decode a stream file and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(s *storage.DefaultStorage) error {
			id, records, err := putFile(s, args[0], cfg.Dump.BufferSize)
			if err != nil {
				return err
			}
			logger.Info().Str("id", id).Int("records", records).Msg("stream stored")
			cmd.Println(id)
			return nil
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored streams",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(s *storage.DefaultStorage) error {
			infos, err := s.List()
			if err != nil {
				return err
			}
			for _, info := range infos {
				cmd.Printf("%s %8d %s\n", info.ID, info.Size, info.ID.Time().Format(time.RFC3339))
			}
			return nil
		})
	},
}

var storeDumpCmd = &cobra.Command{
	Use:   "dump <id>",
	Short: "Print a stored stream as an indented record tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(s *storage.DefaultStorage) error {
			return dumpStored(s, args[0], cmd.OutOrStdout(), dumpOptions(cfg, logger))
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(s *storage.DefaultStorage) error {
			id, err := storage.ParseID(args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted stream %s\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd, storeListCmd, storeDumpCmd, storeDeleteCmd)
}

func withStorage(fn func(s *storage.DefaultStorage) error) error {
	s, err := openStorage(cfg.DataDir)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// putFile copies every record of the file at path into a new stored stream.
// The file is fully decoded on the way, so a malformed file stores nothing.
func putFile(s stream.BlobStore, path string, bufferSize int) (string, int, error) {
	src, err := stream.NewFileReader(stream.FileStreamConfig{
		FilePath:   path,
		BufferSize: bufferSize,
	})
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	dst := stream.NewStoreWriter(s)
	records, err := copyRecords(codec.New(dst), codec.New(src))
	if err != nil {
		return "", records, fmt.Errorf("reading record %d of %s: %w", records, path, err)
	}
	if err := dst.Close(); err != nil {
		return "", records, err
	}
	return dst.ID().String(), records, nil
}

// copyRecords re-encodes records from src into dst until src ends cleanly
func copyRecords(dst, src *codec.Codec) (int, error) {
	records := 0
	for {
		key, v, err := src.ReadValue()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		if err := dst.AppendValue(key, v); err != nil {
			return records, err
		}
		records++
	}
}

func dumpStored(s stream.BlobStore, rawID string, out io.Writer, opts dump.Options) error {
	id, err := storage.ParseID(rawID)
	if err != nil {
		return err
	}

	src, err := stream.NewStoreReader(s, id)
	if err != nil {
		return err
	}
	defer src.Close()

	return dump.New(out, opts).Dump(codec.New(src))
}
