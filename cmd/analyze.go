package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	analyzeTitle    string
	analyzeArtist   string
	analyzeLanguage string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source-id>...",
	Short: "Detect the high-energy segments of one or more tracks",
	Long: `Fetch each source, decode its audio, and detect the windows worth
putting in a mix. Results are stored in the catalog for plan and export.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStack()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		for _, id := range args {
			track, segments, err := s.analyzeTrack(ctx, id, analyzeTitle, analyzeArtist, analyzeLanguage)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %.1f BPM, energy %.1f, %d segments\n",
				track.SourceID, track.BPM, track.Energy, len(segments))
			for _, seg := range segments {
				marker := " "
				if seg.Primary {
					marker = "*"
				}
				fmt.Printf("  %s %s  %7.2fs - %7.2fs  (%.0fs, energy %.1f)\n",
					marker, seg.Label, seg.Start, seg.End, seg.Duration, seg.Energy)
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "track title (single source only)")
	analyzeCmd.Flags().StringVar(&analyzeArtist, "artist", "", "track artist")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "track language")
}
