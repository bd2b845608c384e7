// Package mcp provides an MCP (Model Context Protocol) server adapter for kbdb.
// It publishes one search tool per registered modality so AI assistants can
// query the knowledge base.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
