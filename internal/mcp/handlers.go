// ABOUTME: MCP tool handler implementations for the prompt randomizer server
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/prompt-randomizer/internal/core"
	"github.com/harper/prompt-randomizer/internal/library"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	generator *core.Generator
	library   *library.Library
	logger    *log.Logger
}

// RandomizePrompt handles the randomize_prompt tool
func (h *Handlers) RandomizePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.generator == nil {
		return mcp.NewToolResultError("no template configured (set RANDOMIZER_TEMPLATE)"), nil
	}

	args, _ := request.Params.Arguments.(map[string]any)

	count := 1
	if raw, ok := args["count"]; ok {
		n, err := toInt(raw)
		if err != nil || n < 1 || n > MaxCount {
			return mcp.NewToolResultError(fmt.Sprintf("count must be an integer between 1 and %d", MaxCount)), nil
		}
		count = n
	}

	var rng *rand.Rand
	if raw, ok := args["seed"]; ok {
		seed, err := toSeed(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seed: %v", err)), nil
		}
		rng = core.NewRand(seed)
	}

	prompts := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		res := h.generator.Generate(rng)
		prompts = append(prompts, map[string]interface{}{
			"prompt":    res.Prompt.Render,
			"selection": res.Selection,
		})
	}
	h.logger.Debug("randomize_prompt", "count", count, "seeded", rng != nil)

	return jsonResult(map[string]interface{}{"prompts": prompts})
}

// ComposePrompt handles the compose_prompt tool
func (h *Handlers) ComposePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError("group argument is required and must be a string"), nil
	}

	var picks []core.Pick
	args, _ := request.Params.Arguments.(map[string]any)
	if raw, exists := args["picks"]; exists {
		arr, ok := raw.([]interface{})
		if !ok {
			return mcp.NewToolResultError("picks must be an array of strings"), nil
		}
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return mcp.NewToolResultError("picks must be an array of strings"), nil
			}
			p, err := core.ParsePick(s)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			picks = append(picks, p)
		}
	}

	group, err := h.library.LoadGroup(uri)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load group: %v", err)), nil
	}

	builder := core.NewPromptBuilder(h.logger).Append(group, picks)
	misses := builder.Misses()
	skipped := make([]string, 0, len(misses))
	for _, m := range misses {
		skipped = append(skipped, m.Error())
	}

	return jsonResult(map[string]interface{}{
		"prompt":  builder.Build().Render,
		"skipped": skipped,
	})
}

// ListSlots handles the list_slots tool
func (h *Handlers) ListSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError("group argument is required and must be a string"), nil
	}

	group, err := h.library.LoadGroup(uri)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load group: %v", err)), nil
	}

	slots := make([]map[string]interface{}, 0, len(group.Variants))
	for _, slot := range group.Variants {
		slots = append(slots, map[string]interface{}{
			"name":   slot.Name,
			"chunks": len(slot.Chunks),
		})
	}

	return jsonResult(map[string]interface{}{
		"group":    group.Source,
		"defaults": len(group.Defaults),
		"slots":    slots,
	})
}

func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// toInt accepts JSON numbers and numeric strings
func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

// toSeed accepts non-negative JSON numbers and decimal strings; strings keep full uint64 precision
func toSeed(raw interface{}) (uint64, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= 1<<64 {
			return 0, fmt.Errorf("%v is not a non-negative integer", v)
		}
		return uint64(v), nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
