package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Upsert documents into the semantic index",
	Long: `Index reads a JSON array of documents from a file and upserts them
into the semantic index. Unchanged documents are skipped, so re-running
the same export is idempotent.

The file format matches the sync job's export:
  [{"id": "...", "text": "...", "metadata": {"type": "fixture", ...}}, ...]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read documents file: %w", err)
		}

		var docs []domain.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return fmt.Errorf("parse documents file: %w", err)
		}
		if len(docs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents to index.")
			return nil
		}

		if err := indexService.Index(cmd.Context(), docs); err != nil {
			return fmt.Errorf("index documents: %w", err)
		}

		stats, err := indexService.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("read index stats: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d written, %d unchanged).\n",
			len(docs), stats.Writes, stats.SkippedWrites)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
