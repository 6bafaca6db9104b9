// ABOUTME: Guy templates are YAML files that seed a persona's history and functions
// ABOUTME: History entries are single-key maps: User, System, Assistant or UserFromFile
package guy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harper/prompt-randomizer/internal/models"
)

// Entry kinds accepted in a template history
const (
	KindUser         = "User"
	KindSystem       = "System"
	KindAssistant    = "Assistant"
	KindUserFromFile = "UserFromFile"
)

// HistoryEntry is one templated message
type HistoryEntry struct {
	Kind  string
	Value string
}

// UnmarshalYAML decodes a {Kind: value} map with exactly one key
func (e *HistoryEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: history entry must be a single-key map", node.Line)
	}
	kind := node.Content[0].Value
	switch kind {
	case KindUser, KindSystem, KindAssistant, KindUserFromFile:
	default:
		return fmt.Errorf("line %d: unknown history entry %q", node.Line, kind)
	}
	var value string
	if err := node.Content[1].Decode(&value); err != nil {
		return fmt.Errorf("line %d: %s: %w", node.Line, kind, err)
	}
	e.Kind = kind
	e.Value = value
	return nil
}

// MarshalYAML writes the entry back in its single-key form
func (e HistoryEntry) MarshalYAML() (interface{}, error) {
	return map[string]string{e.Kind: e.Value}, nil
}

// Template seeds a guy
type Template struct {
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	History     []HistoryEntry    `yaml:"history"`
	Functions   []models.Function `yaml:"functions"`
}

// LoadTemplate reads a template file
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guy template: %w", err)
	}
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse guy template %s: %w", path, err)
	}
	return &tmpl, nil
}

// Apply appends the template history to g and replaces its functions.
// UserFromFile paths are resolved against baseDir. g is unchanged on error.
func Apply(g *models.Guy, tmpl *Template, baseDir string) error {
	type pending struct {
		role    models.Role
		content string
	}
	msgs := make([]pending, 0, len(tmpl.History))
	for i, entry := range tmpl.History {
		switch entry.Kind {
		case KindUser:
			msgs = append(msgs, pending{models.RoleUser, entry.Value})
		case KindSystem:
			msgs = append(msgs, pending{models.RoleSystem, entry.Value})
		case KindAssistant:
			msgs = append(msgs, pending{models.RoleAssistant, entry.Value})
		case KindUserFromFile:
			path := entry.Value
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("history[%d]: %w", i, err)
			}
			msgs = append(msgs, pending{models.RoleUser, string(data)})
		default:
			return fmt.Errorf("history[%d]: unknown entry %q", i, entry.Kind)
		}
	}

	next := *g
	next.History = append([]models.Message(nil), g.History...)
	for i, m := range msgs {
		if err := next.PushMessage(m.role, m.content); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	next.Functions = append([]models.Function(nil), tmpl.Functions...)
	if tmpl.Description != "" {
		next.Description = tmpl.Description
	}
	*g = next
	return nil
}
