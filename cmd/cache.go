package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mixdeck/media"
	"mixdeck/util"
)

var cacheClear bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or clear the source media cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := media.NewFetcher(cfg.DataDir, media.NewTranscoder())

		if cacheClear {
			if err := fetcher.ClearCache(); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		}

		count, bytes := fetcher.CacheStats()
		fmt.Printf("%d cached sources, %s in %s\n", count, util.Pretty(uint64(bytes)), cfg.DataDir)
		return nil
	},
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "delete all cached source media")
}
