package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "export [URL...]",
	Short: "Write generated titles and descriptions to files",
	Long: `For every URL, fetch the transcript, generate a title and description
and write "{title}.txt" to the configured export storage (a local
directory by default, or an S3/R2 bucket).`,
	Example: `  tubectl export "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  tubectl export --file playlist.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := collectURLs(args, exportFile)
		if err != nil {
			return err
		}

		exporter, err := application.Exporter(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, res := range exporter.ExportAll(cmd.Context(), urls) {
			if res.Err != nil {
				failed++
				fmt.Fprintf(out, "FAILED  %s: %v\n", res.URL, res.Err)
				continue
			}
			verb := "saved"
			if res.Replaced {
				verb = "replaced"
			}
			fmt.Fprintf(out, "%-8s %s -> %s\n", verb, res.URL, res.Location)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d exports failed", failed, len(urls))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "file with one URL per line")
	rootCmd.AddCommand(exportCmd)
}
