// ABOUTME: MCP tool definitions and registration for the prompt randomizer server
// ABOUTME: Defines JSON schemas for randomize_prompt, compose_prompt and list_slots
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/prompt-randomizer/internal/core"
	"github.com/harper/prompt-randomizer/internal/library"
	"github.com/harper/prompt-randomizer/internal/logging"
)

// MaxCount bounds the prompts returned by one randomize_prompt call
const MaxCount = 50

// RegisterTools registers all MCP tools with the server.
// gen may be nil when no template is configured; randomize_prompt then reports an error.
func RegisterTools(server *mcpserver.MCPServer, gen *core.Generator, lib *library.Library, logger *log.Logger) *Handlers {
	handlers := NewHandlers(gen, lib, logger)

	// 1. randomize_prompt - Render prompts from the configured template
	server.AddTool(mcp.Tool{
		Name:        "randomize_prompt",
		Description: "Generate randomized image prompts from the configured template. Each prompt picks one alternative per varied choice and one chunk per slot.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Optional seed; the same seed returns the same prompts",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of prompts to generate (default: 1, max: 50)",
					"default":     1,
				},
			},
		},
	}, handlers.RandomizePrompt)

	// 2. compose_prompt - Render one chunk group with explicit picks
	server.AddTool(mcp.Tool{
		Name:        "compose_prompt",
		Description: "Compose a prompt from one chunk group: all defaults plus the chunk named by each slot:index pick. Unknown picks are skipped and reported.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"group": map[string]interface{}{
					"type":        "string",
					"description": "Chunk group uri relative to the library root",
				},
				"picks": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Selections as slot:index or slot=index",
				},
			},
			Required: []string{"group"},
		},
	}, handlers.ComposePrompt)

	// 3. list_slots - Describe a chunk group
	server.AddTool(mcp.Tool{
		Name:        "list_slots",
		Description: "List the variant slots of a chunk group with the number of chunks in each.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"group": map[string]interface{}{
					"type":        "string",
					"description": "Chunk group uri relative to the library root",
				},
			},
			Required: []string{"group"},
		},
	}, handlers.ListSlots)

	return handlers
}

// NewHandlers creates handlers without registering them
func NewHandlers(gen *core.Generator, lib *library.Library, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handlers{generator: gen, library: lib, logger: logger}
}
