package driven

// Prompt names understood by the PromptStore.
const (
	// PromptAnswer wraps retrieved context and a user question for the
	// generator. Placeholders: %s (context), %s (question).
	PromptAnswer = "answer"

	// PromptSystem is the persona preamble prepended to generation requests.
	PromptSystem = "system"
)

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files with
// embedded defaults as fallback.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads.
	Reload()

	// Dir returns the directory prompts are loaded from.
	Dir() string
}
