package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/regulaware/dossier-cli/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [project]",
	Short: "Keep a project's index in sync with its folder",
	Long: `Watches the project folder and re-embeds files as they change.
Runs until interrupted. Each changed file is refreshed individually;
unchanged files keep their existing embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"quiet period before a changed file is refreshed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil || projectService == nil {
		return errors.New("services not configured")
	}

	project, err := projectService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", project.Path)

	w := watcher.New(ingestService, docParser, watchDebounce)
	if err := w.Watch(ctx, *project); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
