// ABOUTME: Builds the randomizer MCP server from configuration and serves it on stdio
// ABOUTME: Shared by the standalone server binary and the CLI mcp command
package mcp

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/core"
	"github.com/harper/prompt-randomizer/internal/library"
	"github.com/harper/prompt-randomizer/internal/logging"
)

const (
	ServerName    = "Prompt Randomizer"
	ServerVersion = "0.1.0"
)

// NewServer loads the configured template, when one is set, and registers the tools.
// A template that fails to load is an error; a missing one only disables randomize_prompt.
func NewServer(cfg *config.Config, logger *log.Logger) (*mcpserver.MCPServer, *Handlers, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	var gen *core.Generator
	if cfg.TemplatePath != "" {
		opts := []core.GeneratorOption{core.WithLogger(logger)}
		if cfg.Seed != 0 {
			opts = append(opts, core.WithSeed(cfg.Seed))
		}
		g, err := core.NewGenerator(cfg.TemplatePath, cfg.LibraryDir, opts...)
		if err != nil {
			return nil, nil, err
		}
		gen = g
		logger.Info("template loaded", "path", cfg.TemplatePath)
	} else {
		logger.Warn("RANDOMIZER_TEMPLATE not set - randomize_prompt will not work")
	}

	server := mcpserver.NewMCPServer(ServerName, ServerVersion)
	handlers := RegisterTools(server, gen, library.New(cfg.LibraryDir), logger)
	return server, handlers, nil
}

// Serve runs server on stdio until ctx is cancelled or the transport fails
func Serve(ctx context.Context, server *mcpserver.MCPServer, logger *log.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, shutting down")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
