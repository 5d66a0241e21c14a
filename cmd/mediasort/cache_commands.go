package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediasort/internal/cache"
	"mediasort/internal/config"
)

func newCacheCommand(configFlag *string) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Show-status cache maintenance",
	}

	cacheCmd.AddCommand(newCacheClearCommand(configFlag))

	return cacheCmd
}

func newCacheClearCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached show-status lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := cache.Open(cfg.Paths.CacheDir)
			if err != nil {
				return fmt.Errorf("open status cache: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries from %s\n", removed, store.Path())
			return nil
		},
	}
}
