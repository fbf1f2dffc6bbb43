package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"movs/internal/appconfig"
	"movs/internal/configcache"
	"movs/internal/configloader"
	"movs/internal/logging"
)

// loadResult is the JSON shape of `movs load`.
type loadResult struct {
	Source string           `json:"source"`
	Config appconfig.Config `json:"config"`
	Error  string           `json:"error,omitempty"`
}

const (
	sourceRemote = "remote"
	sourceCache  = "cache"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Fetch the configuration once, falling back to the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := fileLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			client, err := newTMDBClient(cfg)
			if err != nil {
				return err
			}
			cache, err := configcache.Open(cfg, logger)
			if err != nil {
				return fmt.Errorf("open config cache: %w", err)
			}
			defer cache.Close()

			resolved, failure := loadOnce(cmd.Context(), client, cache, logger)
			if resolved == nil {
				if failure != nil {
					return fmt.Errorf("no configuration available: %w", failure.Err)
				}
				return errors.New("no configuration available")
			}

			result := loadResult{Source: sourceRemote, Config: *resolved}
			if failure != nil {
				result.Source = sourceCache
				result.Error = failure.Err.Error()
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; using cached configuration\n", failure.Err)
			}

			if ctx.jsonOutput(cmd) {
				return writeJSON(cmd, result)
			}
			printConfig(cmd.OutOrStdout(), result.Source, result.Config)
			return nil
		},
	}
}

// loadOnce runs a single loader cycle and returns what it published.
func loadOnce(ctx context.Context, source configloader.RemoteSource, store configloader.Store, logger *slog.Logger) (*appconfig.Config, *configloader.Failure) {
	triggers := make(chan configloader.Trigger)
	loader := configloader.New(ctx, triggers, source, store, configloader.WithLogger(logger))
	defer loader.Close()

	configs := loader.SubscribeConfigs()
	failures := loader.SubscribeFailures()

	select {
	case triggers <- configloader.Trigger{}:
		close(triggers)
	case <-loader.Done():
	}

	var (
		resolved *appconfig.Config
		failure  *configloader.Failure
	)
	configCh, failureCh := configs.C(), failures.C()
	for configCh != nil || failureCh != nil {
		select {
		case c, ok := <-configCh:
			if !ok {
				configCh = nil
				continue
			}
			resolved = &c
		case f, ok := <-failureCh:
			if !ok {
				failureCh = nil
				continue
			}
			failure = &f
			logger.Debug("load cycle failed", logging.String(logging.FieldCorrelationID, f.ID))
		}
	}
	return resolved, failure
}

func printConfig(out io.Writer, source string, cfg appconfig.Config) {
	fmt.Fprintf(out, "Source:         %s\n", source)
	fmt.Fprintf(out, "Image base URL: %s\n", cfg.ImageBaseURL)
	fmt.Fprintf(out, "Genres:         %d\n", len(cfg.Genres))
	if len(cfg.Genres) > 0 {
		fmt.Fprintln(out, renderGenreTable(cfg.Genres))
	}
}
