// Package cmd wires the engine's operations into the mixdeck CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mixdeck/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "mixdeck",
	Short: "Builds continuous video mixes from the best parts of songs",
	Long: `Mixdeck finds the most exciting window inside each source track, orders
the cuts for smooth musical flow, and composes them into one video with
transitions and optional spoken commentary.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
}
