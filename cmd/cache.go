package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cortlandcast/config"
	"cortlandcast/core/artwork"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the artwork cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Evict stale playlist artwork",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		pruned, err := store.PruneStale()
		if err != nil {
			fail("prune failed: %v", err)
		}
		fmt.Printf("pruned %d stale entries\n", pruned)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all cached artwork",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		if err := store.PurgeAll(); err != nil {
			fail("purge failed: %v", err)
		}
		fmt.Println("artwork cache purged")
	},
}

func openStore() *artwork.Store {
	cfg := config.Load()
	store, err := artwork.NewStore(cfg.ArtworkCacheDir)
	if err != nil {
		fail("cannot open artwork cache at %s: %v", cfg.ArtworkCacheDir, err)
	}
	return store
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
