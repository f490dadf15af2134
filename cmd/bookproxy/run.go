package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bookproxy/pkg/cli"
	"bookproxy/pkg/config"
	"bookproxy/pkg/server"
	"bookproxy/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bookproxy server",
	Long: `Start the bookproxy server with the specified configuration.

The server listens on the configured address and answers /search and /isbn
from the cache and the provider chain. SIGINT or SIGTERM drains in-flight
requests and exits.

With --watch, edits to the configuration file reload the log level and the
rate limit quotas without a restart.

Examples:
  # Start with defaults and BOOKPROXY_* environment overrides
  bookproxy run

  # Start with a config file and reload it on change
  bookproxy run --config /etc/bookproxy/config.yaml --watch

  # Override listen address
  bookproxy run --listen 0.0.0.0:8080

  # Validate config without starting server
  bookproxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload the config file when it changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	config.SetConfig(cfg)

	srv, err := server.Build(cfg, versionInfo(), logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if runFlags.watch && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, 0, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
					slog.Warn("log level not reloaded", "error", err)
				}
				srv.ApplyConfig(next)
			})
			if err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}

	slog.Info("bookproxy starting",
		"version", Version,
		"config", cfgFile,
		"providers", len(cfg.EnabledProviders()),
		"cold_cache", !cfg.Cache.Cold.Disabled,
		"rate_limit", !cfg.RateLimit.Disabled,
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
