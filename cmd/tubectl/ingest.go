package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmy/tubevault/internal/service"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [URL...]",
	Short: "Add many videos to both stores",
	Example: `  tubectl ingest "https://www.youtube.com/watch?v=dQw4w9WgXcQ" "https://youtu.be/9bZkp7q19f0"
  tubectl ingest --file playlist.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := collectURLs(args, ingestFile)
		if err != nil {
			return err
		}

		cfg := application.Config.Ingest
		ingester := service.NewIngestService(application.Videos, &service.IngestConfig{
			Workers:       cfg.Workers,
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.Burst,
		})
		stats := ingester.IngestURLs(cmd.Context(), urls)

		out := cmd.OutOrStdout()
		for url, err := range stats.Failures {
			fmt.Fprintf(out, "FAILED  %s: %v\n", url, err)
		}
		fmt.Fprintf(out, "added=%d skipped=%d failed=%d (of %d)\n",
			stats.AddedItems, stats.SkippedItems, stats.FailedItems, stats.TotalItems)

		if stats.FailedItems > 0 {
			return fmt.Errorf("%d videos failed to ingest", stats.FailedItems)
		}
		return cmd.Context().Err()
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "file with one URL per line")
	rootCmd.AddCommand(ingestCmd)
}
