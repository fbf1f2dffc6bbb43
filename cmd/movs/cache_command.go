package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"movs/internal/configcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the cached configuration",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCommandCache(ctx *commandContext) (configcache.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := fileLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cache, err := configcache.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open config cache: %w", err)
	}
	return cache, nil
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cached configuration snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCommandCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			snapshot, ok := cache.Snapshot()
			if ctx.jsonOutput(cmd) {
				if !ok {
					return writeJSON(cmd, map[string]any{"cached": false})
				}
				return writeJSON(cmd, snapshot)
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No cached configuration")
				return nil
			}
			fmt.Fprintf(out, "Cached at:      %s\n", snapshot.CachedAt.Local().Format(time.RFC3339))
			printConfig(out, sourceCache, snapshot.Config)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached configuration snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCommandCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			if err := cache.Clear(); err != nil {
				return fmt.Errorf("clear config cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared cached configuration")
			return nil
		},
	}
}
