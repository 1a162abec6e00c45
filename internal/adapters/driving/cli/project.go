package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage registered projects",
	Long:  `Commands for registering, listing, and removing document projects.`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name] [path]",
	Short: "Register a project folder",
	Long: `Registers a folder of regulatory documents under a unique name.
The folder is not ingested until 'dossier ingest' runs.`,
	Args: cobra.ExactArgs(2),
	RunE: runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE:  runProjectList,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a project and its cached vector store",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRemove,
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Add(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("add project: %w", err)
	}

	cmd.Printf("Registered project %q at %s\n", project.Name, project.Path)
	cmd.Println("Run 'dossier ingest " + project.Name + "' to build its index.")
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		cmd.Println("No projects registered.")
		return nil
	}

	cmd.Println("Projects:")
	for i := range projects {
		cmd.Printf("  %s\t%s\t%s\n",
			projects[i].Name, projects[i].Path, lastRunSummary(cmd, projects[i].Name))
	}
	return nil
}

// lastRunSummary formats a project's most recent ingest run for the
// list output.
func lastRunSummary(cmd *cobra.Command, name string) string {
	run, err := projectService.LastRun(cmd.Context(), name)
	if errors.Is(err, domain.ErrNotFound) {
		return "never ingested"
	}
	if err != nil {
		return "ingest history unavailable"
	}
	return fmt.Sprintf("%d documents, %d chunks, last ingest %s",
		run.DocumentCount, run.ChunkCount, run.FinishedAt.Format(time.RFC3339))
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	if err := projectService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove project: %w", err)
	}

	cmd.Printf("Removed project %q\n", args[0])
	return nil
}
