// ABOUTME: Guy is a named chat persona with its message history and callable functions
// ABOUTME: Persisted as JSON in the charm KV store
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction:
		return true
	}
	return false
}

// ParseRole converts user input to a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q (valid: system, user, assistant, function)", s)
	}
	return r, nil
}

// Message is one entry of a guy's history
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewMessage creates a message with a fresh id
func NewMessage(role Role, content string) (Message, error) {
	if !role.IsValid() {
		return Message{}, fmt.Errorf("invalid role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, errors.New("message content cannot be empty")
	}
	return Message{
		ID:        "msg_" + uuid.New().String()[:8],
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FunctionProperty describes one parameter of a function
type FunctionProperty struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// FunctionParameters is the JSON schema object of a function
type FunctionParameters struct {
	Type       string                      `json:"type" yaml:"type"`
	Properties map[string]FunctionProperty `json:"properties" yaml:"properties"`
	Required   []string                    `json:"required" yaml:"required"`
}

// Function is a callable the model may request
type Function struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	Parameters  FunctionParameters `json:"parameters" yaml:"parameters"`
}

// Guy is a persona: a name, a description and a running conversation
type Guy struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	History     []Message  `json:"history" yaml:"history"`
	Functions   []Function `json:"functions,omitempty" yaml:"functions,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewGuy creates an empty guy
func NewGuy(name string) (*Guy, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("guy name cannot be empty")
	}
	return &Guy{
		Name:      name,
		History:   []Message{},
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// PushMessage appends a message to the history
func (g *Guy) PushMessage(role Role, content string) error {
	msg, err := NewMessage(role, content)
	if err != nil {
		return err
	}
	g.History = append(g.History, msg)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Reset clears the history
func (g *Guy) Reset() {
	g.History = []Message{}
	g.UpdatedAt = time.Now().UTC()
}

// RemoveMessages deletes the history entries at the given indexes.
// Every index is checked first; on error the history is unchanged.
func (g *Guy) RemoveMessages(indexes ...int) error {
	drop := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(g.History) {
			return fmt.Errorf("message index %d out of range [0,%d)", i, len(g.History))
		}
		drop[i] = true
	}
	kept := make([]Message, 0, len(g.History)-len(drop))
	for i, m := range g.History {
		if !drop[i] {
			kept = append(kept, m)
		}
	}
	g.History = kept
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// LastMessage returns the most recent message
func (g *Guy) LastMessage() (Message, bool) {
	if len(g.History) == 0 {
		return Message{}, false
	}
	return g.History[len(g.History)-1], true
}
