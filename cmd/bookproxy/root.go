package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookproxy/pkg/cli"
	"bookproxy/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bookproxy",
	Short: "Bookproxy - caching lookup proxy for book metadata",
	Long: `Bookproxy answers book searches and ISBN lookups for clients that must
not hold upstream API keys.

Requests are served from a hot in-memory cache, then a cold SQLite cache,
and only then from the upstream catalogs in priority order:
  - Google Books
  - ISBNdb (needs an API key)
  - Open Library

Configuration comes from an optional YAML file and BOOKPROXY_* environment
variables, which take precedence.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}
