package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/databin/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file with a generated API key",
	Long: `Write a databin config file with default dump settings and a freshly
generated API key for the REST server.

Examples:
  databin init
  databin init --config=./databin.yaml --data-dir=./data --force`,
	// The config file may not exist yet, so skip loading it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(path) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
			return nil
		}

		bootstrapped, err := config.BootstrapConfig(path, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Wrote config to %s\n", path)
		cmd.Printf("Data directory: %s\n", bootstrapped.DataDir)
		cmd.Printf("API key: %s\n", bootstrapped.Security.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
