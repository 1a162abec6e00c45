package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [project] [question]", queryCmd.Use)
}

func TestQueryCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("query", "demo")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestQueryCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"procedures", "context", "budget", "primary", "generate", "json"} {
		flag := queryCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag %s should exist", name)
	}
}

func TestQueryCmd_PrintsContextAndMetadata(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("query", "demo", "what applies?")

	require.NoError(t, err)
	assert.Contains(t, out, "assembled context")
	assert.Contains(t, out, "2 procedure and 1 context chunks")
	assert.Contains(t, out, "SOP-001.md")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("query", "--json", "demo", "what applies?")

	require.NoError(t, err)
	assert.Contains(t, out, `"Context": "assembled context"`)
}

func TestQueryCmd_Generate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("query", "--generate", "demo", "what applies?")

	require.NoError(t, err)
	assert.Contains(t, out, "generated answer")
	assert.Contains(t, out, "mock-model")
}

func TestRenderAnswerTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "two verbs filled in order",
			template: "Docs:\n%s\n\nQ: %s\nA:",
			want:     "Docs:\nthe docs\n\nQ: the question\nA:",
		},
		{
			name:     "escaped percent is not a verb",
			template: "Be 100%% sure.\n%s\n%s",
			want:     "Be 100% sure.\nthe docs\nthe question",
		},
		{
			name:     "no verbs falls back to bare layout",
			template: "Answer from the documents.",
			want:     "the docs\n\nQuestion: the question\n\nAnswer:",
		},
		{
			name:     "single verb falls back",
			template: "Docs: %s",
			want:     "the docs\n\nQuestion: the question\n\nAnswer:",
		},
		{
			name:     "stray extra verb falls back",
			template: "%s %s %d",
			want:     "the docs\n\nQuestion: the question\n\nAnswer:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderAnswerTemplate(tt.template, "the docs", "the question")
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "%!")
		})
	}
}

func TestQueryCmd_GenerateWithMangledTemplate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	promptStore = &stubPromptStore{prompts: map[string]string{
		"system": "You answer from documents.",
		"answer": "Context only: %s",
	}}

	out, err := executeCommand("query", "--generate", "demo", "what applies?")

	require.NoError(t, err)
	assert.Contains(t, out, "generated answer")

	prompt := generator.(*mockGenerator).prompt
	assert.NotContains(t, prompt, "%!")
	assert.Contains(t, prompt, "assembled context")
	assert.Contains(t, prompt, "Question: what applies?")
}

func TestQueryCmd_PrimaryFileMissing(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryPrimaryFile = "/nonexistent/draft.md"
	defer func() { queryPrimaryFile = "" }()

	_, err := executeCommand("query", "demo", "question")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "primary context")
}
