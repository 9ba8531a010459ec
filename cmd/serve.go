package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mixdeck/mix"
	"mixdeck/pipeline"
	"mixdeck/voice"
	"mixdeck/web"
)

var serveMaxJobs int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP export API",
	Long: `Serve the export engine over HTTP: POST /api/export to start a job,
GET /api/jobs/{id} to poll it, POST /api/jobs/{id}/cancel to stop it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStack()
		if err != nil {
			return err
		}
		defer s.Close()

		pl := &pipeline.Pipeline{
			Media:  s.trans,
			Fetch:  s.fetcher,
			Config: cfg,
		}
		if provider, err := voice.NewLocalProvider(s.trans); err != nil {
			fmt.Printf("Warning: commentary disabled: %v\n", err)
		} else {
			pl.Voice = provider
		}

		server := &web.Server{
			Registry:  pipeline.NewRegistry(),
			Pipeline:  pl,
			Queue:     web.NewExportQueue(serveMaxJobs),
			ExportDir: cfg.ExportDir,
			Params: mix.Params{
				Strategy:        cfg.Strategy,
				Curve:           cfg.EnergyCurve,
				MaxSameLanguage: cfg.MaxSameLanguage,
			},
		}
		return server.Start(cfg.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&serveMaxJobs, "max-jobs", 2, "export jobs allowed to transcode at once")
}
