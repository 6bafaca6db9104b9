// ABOUTME: ChunkGroup is the parsed form of one chunk library file
// ABOUTME: Holds always-included defaults plus named slots of alternatives
package models

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSelectionDefect marks a slot or choice that has nothing to select from
var ErrSelectionDefect = errors.New("selection defect")

// Slot is a named set of candidate chunks. Exactly one is used per generation.
type Slot struct {
	Name   string  `json:"name"`
	Chunks []Chunk `json:"chunks"`
}

// ChunkGroup bundles default chunks with variant slots
type ChunkGroup struct {
	Source   string  `yaml:"-" json:"source,omitempty"`
	Defaults []Chunk `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Variants []Slot  `yaml:"-" json:"variants,omitempty"`
}

// Slot returns the slot with the given name
func (g *ChunkGroup) Slot(name string) (Slot, bool) {
	for _, s := range g.Variants {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotNames returns slot names in file order
func (g *ChunkGroup) SlotNames() []string {
	names := make([]string, len(g.Variants))
	for i, s := range g.Variants {
		names[i] = s.Name
	}
	return names
}

// Validate checks that every slot can be resolved
func (g *ChunkGroup) Validate() error {
	seen := make(map[string]struct{}, len(g.Variants))
	for _, s := range g.Variants {
		if strings.TrimSpace(s.Name) == "" {
			return errors.New("variant slot name cannot be empty")
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("duplicate variant slot: %s", s.Name)
		}
		seen[s.Name] = struct{}{}
		if len(s.Chunks) == 0 {
			return fmt.Errorf("variant slot %q has no chunks: %w", s.Name, ErrSelectionDefect)
		}
	}
	return nil
}

// UnmarshalYAML decodes a chunk group while keeping slots in file order
func (g *ChunkGroup) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: chunk group must be a mapping", value.Line)
	}

	var raw struct {
		Defaults []Chunk   `yaml:"defaults"`
		Variants yaml.Node `yaml:"variants"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	g.Defaults = raw.Defaults
	g.Variants = nil

	switch raw.Variants.Kind {
	case 0:
		return nil
	case yaml.ScalarNode:
		// "variants:" with no value
		if raw.Variants.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("line %d: variants must be a mapping", raw.Variants.Line)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: variants must be a mapping", raw.Variants.Line)
	}

	content := raw.Variants.Content
	g.Variants = make([]Slot, 0, len(content)/2)
	for i := 0; i+1 < len(content); i += 2 {
		var chunks []Chunk
		if err := content[i+1].Decode(&chunks); err != nil {
			return fmt.Errorf("variant %q: %w", content[i].Value, err)
		}
		g.Variants = append(g.Variants, Slot{Name: content[i].Value, Chunks: chunks})
	}
	return nil
}
