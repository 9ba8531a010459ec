package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mixdeck/mix"
)

var suggestRecent []string

var suggestCmd = &cobra.Command{
	Use:   "suggest <current-source-id>",
	Short: "Rank what to play after the current track",
	Long: `Score every other analyzed track as a follow-up to the one playing
now, rewarding tempo and energy closeness and language variety.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStack()
		if err != nil {
			return err
		}
		defer s.Close()

		current, err := s.entriesFor(args[:1], true)
		if err != nil {
			return err
		}

		tracks, err := s.store.Tracks()
		if err != nil {
			return err
		}

		var ids []string
		for _, t := range tracks {
			if t.SourceID != args[0] {
				ids = append(ids, t.SourceID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no other tracks in the catalog")
		}

		candidates, err := s.entriesFor(ids, true)
		if err != nil {
			return err
		}

		for _, sug := range mix.SuggestNext(current[0], candidates, suggestRecent) {
			fmt.Printf("%6.1f  %s (%s, %.0f BPM, energy %.1f)\n",
				sug.Score, sug.Entry.Title, sug.Entry.Language, sug.Entry.BPM, sug.Entry.Energy)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringSliceVar(&suggestRecent, "recent", nil, "languages heard recently, penalized slightly")
}
