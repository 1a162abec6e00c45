// Package cli implements the command-line interface. It is also the
// composition root: adapters are constructed here and injected into the
// core services, which only see port interfaces.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/regulaware/dossier-cli/internal/adapters/driven/config/file"
	"github.com/regulaware/dossier-cli/internal/adapters/driven/embedding/lazy"
	ollamaembed "github.com/regulaware/dossier-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/regulaware/dossier-cli/internal/adapters/driven/embedding/openai"
	anthropicgen "github.com/regulaware/dossier-cli/internal/adapters/driven/llm/anthropic"
	ollamagen "github.com/regulaware/dossier-cli/internal/adapters/driven/llm/ollama"
	openaigen "github.com/regulaware/dossier-cli/internal/adapters/driven/llm/openai"
	"github.com/regulaware/dossier-cli/internal/adapters/driven/parser/filesystem"
	"github.com/regulaware/dossier-cli/internal/adapters/driven/storage/sqlite"
	vsfile "github.com/regulaware/dossier-cli/internal/adapters/driven/vectorstore/file"
	"github.com/regulaware/dossier-cli/internal/chunker"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
	"github.com/regulaware/dossier-cli/internal/core/services"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services wired by initServices. Tests install mocks directly.
var (
	configStore  driven.ConfigStore
	promptStore  driven.PromptStore
	embedder     driven.EmbeddingService
	generator    driven.Generator
	docParser    driven.DocumentParser
	projectStore driven.ProjectStore

	projectService   driving.ProjectService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Semantic retrieval over regulated project documents",
	Long: `Dossier indexes a project folder of regulatory documents (SOPs,
risk analyses, design records, standards excerpts) into a local vector
store and assembles token-budgeted, citation-tracked context for
compliance questions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initServices constructs adapters and core services. Idempotent so test
// setups that pre-install services are left alone.
func initServices() error {
	if projectService != nil {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialise config store: %w", err)
	}

	promptStore, err = configfile.NewPromptStore(configStore.GetString("prompts.dir"))
	if err != nil {
		return fmt.Errorf("initialise prompt store: %w", err)
	}

	embedder = buildEmbedder(configStore)

	storeFactory, err := vsfile.NewFactory(
		configStore.GetString("cache.dir"),
		embedder.ModelName(),
		embedder.Dimensions(),
	)
	if err != nil {
		return fmt.Errorf("initialise vector store factory: %w", err)
	}

	projectStore, err = sqlite.NewProjectStore(configStore.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("initialise project registry: %w", err)
	}

	docParser = filesystem.New()
	chunk := chunker.New()

	generator, err = buildGenerator(configStore)
	if err != nil {
		return fmt.Errorf("initialise generator: %w", err)
	}

	projectService = services.NewProjectService(projectStore, storeFactory)
	ingestService = services.NewIngestService(projectStore, docParser, chunk, embedder, storeFactory)
	retrievalService = services.NewRetrievalService(
		projectStore, docParser, chunk, embedder, storeFactory, ingestService,
	)

	return nil
}

// buildGenerator selects the text-generation provider from configuration.
// Only query --generate touches the generator, so a missing API key for a
// remote provider surfaces here rather than mid-query.
func buildGenerator(cfg driven.ConfigStore) (driven.Generator, error) {
	model := cfg.GetString("generation.model")
	baseURL := cfg.GetString("generation.base_url")

	switch cfg.GetString("generation.provider") {
	case "anthropic":
		apiKey := cfg.GetString("anthropic.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		return anthropicgen.New(anthropicgen.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})

	case "openai":
		apiKey := cfg.GetString("openai.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openaigen.New(openaigen.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})

	default: // ollama
		return ollamagen.New(ollamagen.Config{
			BaseURL: baseURL,
			Model:   model,
		}), nil
	}
}

// buildEmbedder selects the embedding provider from configuration and
// wraps it in the lazy handle so nothing connects until first use.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	switch cfg.GetString("embedding.provider") {
	case "openai":
		model := cfg.GetString("embedding.model")
		if model == "" {
			model = openaiembed.DefaultModel
		}
		apiKey := cfg.GetString("openai.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		baseURL := cfg.GetString("openai.base_url")

		return lazy.New(model, openaiembed.DimensionsFor(model), func(_ context.Context) (driven.EmbeddingService, error) {
			return openaiembed.NewEmbeddingService(openaiembed.Config{
				APIKey:  apiKey,
				BaseURL: baseURL,
				Model:   model,
			})
		})

	default: // ollama
		model := cfg.GetString("embedding.model")
		if model == "" {
			model = ollamaembed.DefaultModel
		}
		dims := cfg.GetInt("embedding.dimensions")
		if dims == 0 {
			dims = ollamaembed.DefaultDimensions
		}
		baseURL := cfg.GetString("ollama.base_url")

		return lazy.New(model, dims, func(_ context.Context) (driven.EmbeddingService, error) {
			return ollamaembed.NewEmbeddingService(ollamaembed.Config{
				BaseURL:    baseURL,
				Model:      model,
				Dimensions: dims,
			}), nil
		})
	}
}
