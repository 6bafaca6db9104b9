// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents generate and compose prompts via stdio
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the randomizer as an MCP (Model Context Protocol) server so LLM
agents can generate randomized prompts, compose prompts from explicit
picks and inspect chunk groups over stdio.

randomize_prompt needs RANDOMIZER_TEMPLATE; the other tools only need
the library directory (RANDOMIZER_LIBRARY).`,
		Args: cobra.NoArgs,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  randomizer mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "randomizer": {
  #       "command": "randomizer",
  #       "args": ["mcp"],
  #       "env": {"RANDOMIZER_TEMPLATE": "/path/to/template.yaml"}
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	server, _, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting on stdio", "library", cfg.LibraryDir)
	return mcp.Serve(ctx, server, logger)
}
