package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mixdeck/mix"
	"mixdeck/pipeline"
	"mixdeck/util"
	"mixdeck/voice"
)

var (
	exportOutput     string
	exportCommentary bool
	exportAnalyze    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <source-id>...",
	Short: "Compose analyzed tracks into one mix video",
	Long: `Sequence the given tracks and run the full composition pipeline:
intro, segment cuts with overlays, transitions, optional commentary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStack()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()

		if exportAnalyze {
			for _, id := range args {
				if _, ok := s.store.Track(id); ok {
					continue
				}
				fmt.Printf("Analyzing %s...\n", id)
				if _, _, err := s.analyzeTrack(ctx, id, "", "", ""); err != nil {
					return err
				}
			}
		}

		entries, err := s.entriesFor(args, true)
		if err != nil {
			return err
		}

		plan := mix.Sequence(entries, planParams())
		printPlan(plan)

		job := pipeline.NewJob()
		job.Subscribe(func(p pipeline.Progress) {
			fmt.Printf("[%5.1f%%] %s (%s)\n", p.Progress, p.Stage, p.Status)
		})

		pl := &pipeline.Pipeline{
			Media:  s.trans,
			Fetch:  s.fetcher,
			Config: cfg,
		}
		if exportCommentary {
			pl.Config.Commentary = true
			provider, err := voice.NewLocalProvider(s.trans)
			if err != nil {
				fmt.Printf("Warning: commentary disabled: %v\n", err)
			} else {
				pl.Voice = provider
			}
		}

		output := exportOutput
		if output == "" {
			output = filepath.Join(cfg.ExportDir, "mix_"+job.ID+".mp4")
		}

		pl.Run(ctx, job, plan, output)

		final := job.Snapshot()
		for _, warning := range final.Warnings {
			fmt.Printf("Warning: %s\n", warning)
		}
		if final.Status != pipeline.StatusComplete {
			return fmt.Errorf("export %s at stage %s: %s", final.Status, final.Stage, final.Error)
		}

		fmt.Printf("Done: %s (%.1fs, %s)\n", final.OutputPath, final.Duration, util.Pretty(uint64(final.SizeBytes)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().BoolVar(&exportCommentary, "commentary", false, "overlay spoken DJ commentary")
	exportCmd.Flags().BoolVar(&exportAnalyze, "analyze", true, "analyze tracks missing from the catalog first")
	exportCmd.Flags().StringVar(&planStrategy, "strategy", "", "sequencing strategy")
	exportCmd.Flags().StringVar(&planCurve, "curve", "", "energy curve shape")
	exportCmd.Flags().Int64Var(&planSeed, "seed", 0, "seed for shuffled curve sections")
}
