package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild vectors missing for stored videos",
	Long: `Walk the document store and re-embed every video whose vector is
missing from the index. Videos stored without a transcript are reported
and left unindexed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := application.Videos.Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range report.Rebuilt {
			fmt.Fprintf(out, "rebuilt      %s\n", id)
		}
		for _, id := range report.Unindexable {
			fmt.Fprintf(out, "no transcript %s\n", id)
		}
		for id, err := range report.Failed {
			fmt.Fprintf(out, "FAILED       %s: %v\n", id, err)
		}
		fmt.Fprintf(out, "checked=%d rebuilt=%d unindexable=%d failed=%d\n",
			report.Checked, len(report.Rebuilt), len(report.Unindexable), len(report.Failed))

		if len(report.Failed) > 0 {
			return fmt.Errorf("%d videos could not be reconciled", len(report.Failed))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
