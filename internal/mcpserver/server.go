// Package mcpserver exposes the extraction pipeline as MCP tools so agents
// can read tender documents directly.
package mcpserver

import (
	"context"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// New registers the extraction tools on a fresh server. load may be nil,
// in which case extract_document only accepts inline text.
func New(svc extract.Service, load LoadFunc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    config.MCPServerName,
		Version: config.MCPServerVersion,
	}, nil)

	t := &tools{svc: svc, load: load}
	mcp.AddTool(server, MetadataExtractDocument, t.ExtractDocument)
	mcp.AddTool(server, MetadataDetectTables, t.DetectTables)
	return server
}

// ServeStdio blocks until the client disconnects or ctx is cancelled.
func ServeStdio(ctx context.Context, svc extract.Service, load LoadFunc) error {
	logger := logger_i.NewLogger("MCP")
	logger.Info("Serving MCP over stdio", "name", config.MCPServerName)
	err := New(svc, load).Run(ctx, &mcp.StdioTransport{})
	if err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "err", err)
		return err
	}
	return nil
}
