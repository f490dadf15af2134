package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookproxy/pkg/cache/retention"
	"bookproxy/pkg/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with environment overrides applied and
report every problem found.

Examples:
  bookproxy validate --config config.yaml

  # Check what the environment alone produces
  BOOKPROXY_SERVER_LISTEN_ADDRESS=:9000 bookproxy validate`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := retention.ValidateSchedule(cfg.Cache.Cold.PruneSchedule); err != nil {
		return cli.NewConfigError("cache.cold.prune_schedule", err.Error())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")

	if verbose {
		fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  cold cache: %s\n", coldSummary(cfg.Cache.Cold.Disabled, cfg.Cache.Cold.Driver, cfg.Cache.Cold.Path))
		for i, p := range cfg.EnabledProviders() {
			key := "no api key"
			if p.APIKey != "" {
				key = "api key set"
			}
			fmt.Fprintf(out, "  provider %d: %s (%s, timeout %s, %s)\n", i+1, p.Name, p.Type, p.Timeout, key)
		}
	}
	return nil
}

func coldSummary(disabled bool, driver, path string) string {
	if disabled {
		return "disabled"
	}
	return fmt.Sprintf("%s at %s", driver, path)
}
