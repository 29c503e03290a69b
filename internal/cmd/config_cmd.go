package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Digital-Shane/title-match/internal/config"
	"github.com/spf13/cobra"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
	Long: `Print the effective configuration and where it is read from.

--init writes the default configuration to ~/.title-match/config.json unless
the file already exists.`,
	Args: cobra.NoArgs,
	RunE: runConfigCommand,
}

func runConfigCommand(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if configInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.DefaultConfig().Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n%s\n", path, data)
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the default configuration file")
	rootCmd.AddCommand(configCmd)
}
