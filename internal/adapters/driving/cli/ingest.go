package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [project]",
	Short: "Build or rebuild a project's vector store",
	Long: `Parses every supported document under the project folder, chunks
each one with a strategy suited to its type, embeds the chunks, and
persists the resulting vector store.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Printf("Ingesting project %q...\n", args[0])

	run, err := ingestService.Ingest(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d documents (%d chunks) in %s\n",
		run.DocumentCount, run.ChunkCount, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return nil
}
