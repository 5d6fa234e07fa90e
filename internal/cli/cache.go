package cli

import (
	"fmt"

	"github.com/ppiankov/genuinity/internal/cache"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the embedding cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached embedding",
	Long: `Clear empties the embedding cache, including the on-disk layer when
cache.disk_dir is set, so the next run fetches fresh embeddings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cfg.Cache.Enabled = true
		if err := cache.NewFromConfig(cfg.Cache).Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		if cfg.Cache.DiskDir != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared embedding cache: %s\n", cfg.Cache.DiskDir)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ No disk cache configured; nothing persisted to clear\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
