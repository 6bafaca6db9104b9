// ABOUTME: Main entry point for the prompt randomizer MCP server with stdio transport
// ABOUTME: Loads configuration and the template, then serves randomizer tools
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/mcp"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	// stdout carries the protocol
	logger := logging.New(os.Stderr, level)

	server, _, err := mcp.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load template", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Randomizer MCP server starting on stdio...")
	if err := mcp.Serve(ctx, server, logger); err != nil {
		logger.Fatal("Server error", "err", err)
	}
}
