package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/transcriptr/internal/config"
	"github.com/mark3labs/transcriptr/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server exposing transcript tools",
	Long: `Run the MCP server exposing transcript browsing tools over HTTP.

The server listens on a random localhost port and offers three tools:
listing projects, listing the sessions of a project, and exporting a
session to HTML or Markdown. Runs until interrupted.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(cfg.ProjectsDir)
	if _, err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	fmt.Printf("MCP server listening at %s\n", srv.URL())

	<-ctx.Done()
	return srv.Stop()
}
