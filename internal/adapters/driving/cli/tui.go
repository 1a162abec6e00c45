package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/regulaware/dossier-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [project]",
	Short: "Interactive query view",
	Long: `Opens an interactive terminal view over the project: type a
question, see the assembled context block and which documents it drew from.`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	return tui.Run(retrievalService, args[0])
}
