package main

import (
	"os/signal"
	"syscall"

	"github.com/akolanti/TenderExtract/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the extraction tools over MCP stdio",
	Long: `Start an MCP server on stdin/stdout exposing extract_document and
detect_tables. Point an MCP capable client at "tenderctl mcp".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := newService(ctx, settings)
		if err != nil {
			return err
		}
		return mcpserver.ServeStdio(ctx, svc, mcpserver.LoadFunc(loadDocument))
	},
}
