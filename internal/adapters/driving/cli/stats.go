package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index counters and storage tier health",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := indexService.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("read index stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Config")
		fmt.Fprintf(out, "  privacy:  %s\n", appConfig.PrivacyMode())
		fmt.Fprintf(out, "  data dir: %s\n", appConfig.DataDir)

		fmt.Fprintln(out, "Index")
		fmt.Fprintf(out, "  documents: %d\n", stats.TotalDocuments)
		fmt.Fprintf(out, "  writes:    %d\n", stats.Writes)
		fmt.Fprintf(out, "  skipped:   %d\n", stats.SkippedWrites)

		fmt.Fprintln(out, "Storage tiers")
		for _, tier := range docStore.Health(cmd.Context()) {
			state := "ok"
			if !tier.Healthy {
				state = "unhealthy"
				if tier.Error != "" {
					state = "unhealthy (" + tier.Error + ")"
				}
			}
			fmt.Fprintf(out, "  %-8s %s\n", tier.Name, state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
