package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Project          string `json:"project" jsonschema:"name of the registered project to query"`
	Query            string `json:"query" jsonschema:"the compliance question or topic to retrieve context for"`
	ProcedureTopK    int    `json:"procedure_top_k,omitempty" jsonschema:"maximum procedure chunks to retrieve (default 3)"`
	ContextTopK      int    `json:"context_top_k,omitempty" jsonschema:"maximum supporting context chunks to retrieve (default 2)"`
	MaxContextTokens int    `json:"max_context_tokens,omitempty" jsonschema:"token budget for the assembled context (default 6000)"`
	PrimaryContext   string `json:"primary_context,omitempty" jsonschema:"caller-supplied block always included verbatim"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Context         string   `json:"context"`
	ProcedureChunks int      `json:"procedure_chunks"`
	ContextChunks   int      `json:"context_chunks"`
	TokenEstimate   int      `json:"token_estimate"`
	Truncated       bool     `json:"truncated"`
	CacheRebuilt    bool     `json:"cache_rebuilt"`
	Sources         []string `json:"sources,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Project string `json:"project" jsonschema:"name of the registered project to ingest"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Documents   int    `json:"documents"`
	Chunks      int    `json:"chunks"`
	Fingerprint string `json:"fingerprint"`
}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []ProjectInfo `json:"projects"`
	Count    int           `json:"count"`
}

// ProjectInfo is one registered project.
type ProjectInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve token-budgeted document context for a compliance question",
	}, s.handleRetrieve)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Rebuild a project's vector index from its folder",
		}, s.handleIngest)
	}

	if s.ports.Project != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_projects",
			Description: "List registered document projects",
		}, s.handleListProjects)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.RetrievalOptions{
		ProcedureTopK:    input.ProcedureTopK,
		ContextTopK:      input.ContextTopK,
		MaxContextTokens: input.MaxContextTokens,
		PrimaryContext:   input.PrimaryContext,
	}

	result, err := s.ports.Retrieval.Retrieve(ctx, input.Project, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context:         result.Context,
		ProcedureChunks: result.Metadata.ProcedureChunks,
		ContextChunks:   result.Metadata.ContextChunks,
		TokenEstimate:   result.Metadata.TokenEstimate,
		Truncated:       result.Metadata.Truncated,
		CacheRebuilt:    result.Metadata.CacheRebuilt,
		Sources:         result.Metadata.Sources,
	}
	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	run, err := s.ports.Ingest.Ingest(ctx, input.Project)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		Documents:   run.DocumentCount,
		Chunks:      run.ChunkCount,
		Fingerprint: run.Fingerprint,
	}
	return nil, output, nil
}

// handleListProjects handles the list_projects tool invocation.
func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	projects, err := s.ports.Project.List(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, err
	}

	output := ListProjectsOutput{
		Projects: make([]ProjectInfo, len(projects)),
		Count:    len(projects),
	}
	for i := range projects {
		output.Projects[i] = ProjectInfo{
			Name: projects[i].Name,
			Path: projects[i].Path,
		}
	}
	return nil, output, nil
}
