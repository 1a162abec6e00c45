// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Dossier. It lets AI assistants retrieve compliance context from local
// project indexes.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
