package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/services"
)

var (
	queryProcedureTopK int
	queryContextTopK   int
	queryBudget        int
	queryPrimaryFile   string
	queryGenerate      bool
	queryJSON          bool
)

var queryCmd = &cobra.Command{
	Use:   "query [project] [question]",
	Short: "Retrieve relevant document context for a question",
	Long: `Runs similarity search over the project's procedure and context
partitions and assembles a tiered, token-budgeted context block.

With --generate, the assembled context is sent to the configured local
model and the answer is printed with source footnotes.

File names referenced in square brackets (e.g. "compare [SOP-007.md]
with the risk analysis") widen the search so the named documents are
more likely to surface.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryProcedureTopK, "procedures", 0, "procedure matches to retrieve (default 3)")
	queryCmd.Flags().IntVar(&queryContextTopK, "context", 0, "context matches to retrieve (default 2)")
	queryCmd.Flags().IntVar(&queryBudget, "budget", 0, "token budget for the assembled context (default 6000)")
	queryCmd.Flags().StringVar(&queryPrimaryFile, "primary", "", "file whose content is always included, never truncated")
	queryCmd.Flags().BoolVar(&queryGenerate, "generate", false, "generate an answer from the retrieved context")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the retrieval result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.RetrievalOptions{
		ProcedureTopK:    queryProcedureTopK,
		ContextTopK:      queryContextTopK,
		MaxContextTokens: queryBudget,
	}

	if queryPrimaryFile != "" {
		data, err := os.ReadFile(queryPrimaryFile)
		if err != nil {
			return fmt.Errorf("read primary context file: %w", err)
		}
		opts.PrimaryContext = string(data)
	}

	result, err := retrievalService.Retrieve(cmd.Context(), args[0], args[1], opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryGenerate {
		return outputAnswer(cmd, args[1], result)
	}
	if queryJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultText(cmd, result)
}

func outputResultJSON(cmd *cobra.Command, result *domain.RetrievalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultText(cmd *cobra.Command, result *domain.RetrievalResult) error {
	cmd.Println(result.Context)
	cmd.Println()

	meta := result.Metadata
	cmd.Printf("Included %d procedure and %d context chunks (~%d tokens)\n",
		meta.ProcedureChunks, meta.ContextChunks, meta.TokenEstimate)
	if meta.Truncated {
		cmd.Println("Note: context was truncated to fit the token budget.")
	}
	if meta.CacheRebuilt {
		cmd.Println("Note: the vector store was rebuilt for this query.")
	}
	if len(meta.Sources) > 0 {
		cmd.Printf("Sources: %s\n", strings.Join(meta.Sources, ", "))
	}
	return nil
}

// outputAnswer sends the retrieved context through the generator and
// prints the answer with tracked source footnotes.
func outputAnswer(cmd *cobra.Command, question string, result *domain.RetrievalResult) error {
	if generator == nil {
		return errors.New("generator not configured")
	}

	prompt, err := answerPrompt(result.Context, question)
	if err != nil {
		return err
	}

	answer, usage, err := generator.Generate(cmd.Context(), prompt)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	tracker := services.NewSourceTracker()
	tracker.AddFromRetrievalResults(result.ProcedureMatches, result.ContextMatches)

	cmd.Println(strings.TrimSpace(answer))
	cmd.Print(tracker.GenerateFootnotes())
	cmd.Printf("\n(%d prompt + %d completion tokens, model %s)\n",
		usage.PromptTokens, usage.CompletionTokens, generator.ModelName())
	return nil
}

// answerPrompt composes the generation prompt from the prompt store
// templates, falling back to a bare layout when no store is configured.
func answerPrompt(context, question string) (string, error) {
	if promptStore == nil {
		return fmt.Sprintf("%s\n\nQuestion: %s\n\nAnswer:", context, question), nil
	}

	system, err := promptStore.Load(driven.PromptSystem)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}
	template, err := promptStore.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}

	return system + "\n\n" + renderAnswerTemplate(template, context, question), nil
}

// renderAnswerTemplate fills the answer template's two %s verbs with the
// retrieved context and the question. A user-edited template that lost
// or gained format verbs would emit fmt artifacts into the prompt, so
// those fall back to the bare layout.
func renderAnswerTemplate(template, context, question string) string {
	verbs := strings.Count(strings.ReplaceAll(template, "%%", ""), "%")
	if verbs != 2 || strings.Count(template, "%s") != 2 {
		return fmt.Sprintf("%s\n\nQuestion: %s\n\nAnswer:", context, question)
	}
	return fmt.Sprintf(template, context, question)
}
