package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timmy/tubevault/internal/service"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:     "search QUERY...",
	Short:   "Find videos whose transcripts match a query",
	Example: `  tubectl search "open plan kitchen with island" --top-k 3`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		hits, err := application.Videos.Search(cmd.Context(), query, searchTopK)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, "No matches.")
			return nil
		}
		for i, hit := range hits {
			fmt.Fprintf(out, "%d. [%.3f] %s\n   %s\n", i+1, hit.Score, hit.Title, hit.URL)
			if hit.Snippet != "" {
				fmt.Fprintf(out, "   %s\n", hit.Snippet)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", service.DefaultTopK, "number of results (max 100)")
	rootCmd.AddCommand(searchCmd)
}
