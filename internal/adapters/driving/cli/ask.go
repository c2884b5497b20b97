package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

var (
	askTeamFlag string
	askJSONFlag bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a free-text question about the club",
	Long: `Ask routes a question through intent classification, the semantic
index and the live competition API, and prints the answer.

Examples:
  clubby ask "which team does Harshvardhan play for?"
  clubby ask --team "2nd XI" "when is our next game?"
  clubby ask --json "where are we on the ladder?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question must not be empty")
		}

		answer := queryRouter.RouteQuery(cmd.Context(), domain.Query{
			Text:     question,
			Source:   domain.SourceCLI,
			TeamHint: askTeamFlag,
		})

		if askJSONFlag {
			out, err := json.MarshalIndent(answer, "", "  ")
			if err != nil {
				return fmt.Errorf("encode answer: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
		if answer.Meta.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "(degraded: %s)\n", answer.Meta.Error)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askTeamFlag, "team", "", "team name hint to scope the question")
	askCmd.Flags().BoolVar(&askJSONFlag, "json", false, "print the full answer envelope as JSON")
	rootCmd.AddCommand(askCmd)
}
