package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for Dossier resources.
const uriScheme = "dossier://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing projects.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "List of all registered document projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)
}

// handleProjectsResource returns a list of all registered projects.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Project == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	projects, err := s.ports.Project.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	infos := make([]ProjectInfo, len(projects))
	for i := range projects {
		infos[i] = ProjectInfo{
			Name: projects[i].Name,
			Path: projects[i].Path,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
