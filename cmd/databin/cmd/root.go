package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/ssargent/databin/pkg/config"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/logging"
	"github.com/ssargent/databin/pkg/storage"
)

var (
	cfg    = config.DefaultConfig()
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "databin",
	Short: "databin - tagged binary record streams",
	Long: `databin reads, writes and stores streams of tagged binary records.

A stream is a flat sequence of records (tag, 16-bit key, payload) with
container open/close markers for nesting.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments are valid by now, runtime failures should not print usage
		cmd.SilenceUsage = true

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		logger = logging.New(os.Stderr, "databin", cfg.Logging.Level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	logger = logging.New(os.Stderr, "databin", "info")
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("databin failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for stored streams")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.GetDefaultConfigPath()
	}

	loaded := config.DefaultConfig()
	if explicit || config.ConfigExists(path) {
		var err error
		if loaded, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		loaded.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loaded.Logging.Level = level
	}
	return loaded, nil
}

// dumpOptions converts the dump section of the config
func dumpOptions(c *config.Config, log zerolog.Logger) dump.Options {
	return dump.Options{
		IndentWidth: c.Dump.IndentWidth,
		KeyWidth:    c.Dump.KeyWidth,
		TypeWidth:   c.Dump.TypeWidth,
		Hex:         c.Dump.Hex,
		Strict:      c.Dump.Strict,
		Logger:      log,
	}
}

// openStorage opens the pebble store under the data directory
func openStorage(dataDir string) (*storage.DefaultStorage, error) {
	path := filepath.Join(dataDir, "streams")
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	s, err := storage.NewDefaultStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}
