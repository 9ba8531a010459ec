package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mixdeck/mix"
)

var (
	planStrategy    string
	planCurve       string
	planSeed        int64
	planAllSegments bool
)

var planCmd = &cobra.Command{
	Use:   "plan <source-id>...",
	Short: "Sequence analyzed tracks into a mix order",
	Long: `Build and print a mix plan from segments already in the catalog,
without exporting anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStack()
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.entriesFor(args, !planAllSegments)
		if err != nil {
			return err
		}

		plan := mix.Sequence(entries, planParams())
		printPlan(plan)
		return nil
	},
}

func planParams() mix.Params {
	params := mix.Params{
		Strategy:        cfg.Strategy,
		Curve:           cfg.EnergyCurve,
		MaxSameLanguage: cfg.MaxSameLanguage,
		Seed:            planSeed,
	}
	if planStrategy != "" {
		params.Strategy = planStrategy
	}
	if planCurve != "" {
		params.Curve = planCurve
	}
	return params
}

func printPlan(plan mix.Plan) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Segment", "BPM", "Energy", "Lang", "Smooth"})

	for i, e := range plan.Entries {
		smooth := "-"
		if i > 0 {
			smooth = fmt.Sprintf("%.1f", plan.Transitions[i-1].Smoothness)
		}
		t.AppendRow(table.Row{
			i + 1, e.Title, fmt.Sprintf("%.1fs-%.1fs", e.Start, e.End),
			fmt.Sprintf("%.0f", e.BPM), fmt.Sprintf("%.1f", e.Energy), e.Language, smooth,
		})
	}
	t.Render()

	fmt.Printf("Strategy %s, quality %.1f, %.0fs of music\n",
		plan.Strategy, plan.Quality, plan.TotalDuration())
}

func init() {
	planCmd.Flags().StringVar(&planStrategy, "strategy", "", "tempo_smooth, language_variety, energy_curve, or balanced")
	planCmd.Flags().StringVar(&planCurve, "curve", "", "peak_middle, ascending, descending, or wave")
	planCmd.Flags().Int64Var(&planSeed, "seed", 0, "seed for shuffled curve sections")
	planCmd.Flags().BoolVar(&planAllSegments, "all-segments", false, "use every detected segment, not just each track's primary")
}
