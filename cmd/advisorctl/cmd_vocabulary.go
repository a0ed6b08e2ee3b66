package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Advisor/internal/api"
)

func newVocabularyCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "vocabulary",
		Short: "List scenario tags, weight criteria and profile options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vocab := api.NewVocabulary()
			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(vocab)
			}

			fmt.Fprintln(out, "Scenario tags:")
			for _, t := range vocab.ScenarioTags {
				fmt.Fprintf(out, "  %s\n", t)
			}
			fmt.Fprintln(out, "Weight criteria (key, label, default):")
			for _, c := range vocab.Criteria {
				fmt.Fprintf(out, "  %-10s  %-12s  %.2f\n", c.Key, c.Label, c.Default)
			}
			fmt.Fprintf(out, "Security levels: %v\n", vocab.SecurityLevels)
			fmt.Fprintf(out, "City sizes:      %v\n", vocab.CitySizes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}
