package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookproxy/pkg/cli"
	"bookproxy/pkg/server"
)

var cacheFlags struct {
	format string
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the cold cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the cold cache",
	Long: `Delete every cold cache entry whose TTL has passed. The running server
does the same on cache.cold.prune_schedule; this command is for one-off
maintenance.

Examples:
  bookproxy cache prune --config config.yaml
  bookproxy cache prune --format json`,
	RunE: pruneCache,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFlags.format, "format", "text", "output format: text, json")
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// pruneResult is the output of cache prune.
type pruneResult struct {
	Path      string `json:"path"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
}

func (r pruneResult) Text() string {
	return fmt.Sprintf("✓ Pruned %d expired entries from %s (%d remaining)", r.Removed, r.Path, r.Remaining)
}

func pruneCache(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(cacheFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := server.OpenColdStore(cfg)
	if err != nil {
		return cli.NewCommandError("cache prune", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	removed, err := store.Prune(ctx, time.Now())
	if err != nil {
		return cli.NewCommandError("cache prune", err)
	}
	remaining, err := store.Count(ctx)
	if err != nil {
		return cli.NewCommandError("cache prune", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), pruneResult{
		Path:      cfg.Cache.Cold.Path,
		Removed:   removed,
		Remaining: remaining,
	})
}
