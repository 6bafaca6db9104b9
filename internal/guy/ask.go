// ABOUTME: Ask continues a guy's conversation through a chat completer
// ABOUTME: The user's message and the reply are both appended to the history
package guy

import (
	"context"
	"fmt"

	"github.com/harper/prompt-randomizer/internal/models"
)

// Completer produces the next message of a conversation
type Completer interface {
	Complete(ctx context.Context, model string, history []models.Message, functions []models.Function) (models.Message, error)
}

// Ask pushes content with role (when non-empty), asks for a completion and appends the reply.
// On failure the guy keeps the pushed message but gets no reply.
func Ask(ctx context.Context, c Completer, g *models.Guy, model string, role models.Role, content string) (models.Message, error) {
	if content != "" {
		if err := g.PushMessage(role, content); err != nil {
			return models.Message{}, err
		}
	}
	if len(g.History) == 0 {
		return models.Message{}, fmt.Errorf("nothing to complete: %s has no history", g.Name)
	}

	reply, err := c.Complete(ctx, model, g.History, g.Functions)
	if err != nil {
		return models.Message{}, fmt.Errorf("completion for %s: %w", g.Name, err)
	}
	g.History = append(g.History, reply)
	g.UpdatedAt = reply.CreatedAt
	return reply, nil
}
