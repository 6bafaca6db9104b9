// ABOUTME: TemplateDefinition is the parsed root template file
// ABOUTME: Entries are direct includes or varied includes over named alternatives
package models

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntryKind distinguishes template entries
type EntryKind string

const (
	EntryInclude       EntryKind = "include"
	EntryIncludeVaried EntryKind = "include_varied"
)

// Alternative names one candidate file of a varied include
type Alternative struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// TemplateEntry is one line of the composition plan
type TemplateEntry struct {
	Kind    EntryKind     `json:"kind"`
	URI     string        `json:"uri,omitempty"`
	Name    string        `json:"name,omitempty"`
	Choices []Alternative `json:"choices,omitempty"`
}

// TemplateDefinition is the ordered list of entries of a template file
type TemplateDefinition []TemplateEntry

// Validate checks entry shapes and name uniqueness
func (d TemplateDefinition) Validate() error {
	names := make(map[string]struct{})
	for i, e := range d {
		switch e.Kind {
		case EntryInclude:
			if strings.TrimSpace(e.URI) == "" {
				return fmt.Errorf("entry %d: include requires a uri", i)
			}
		case EntryIncludeVaried:
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("entry %d: varied include requires a name", i)
			}
			if _, ok := names[e.Name]; ok {
				return fmt.Errorf("entry %d: duplicate varied include %q", i, e.Name)
			}
			names[e.Name] = struct{}{}
			if len(e.Choices) == 0 {
				return fmt.Errorf("entry %d: varied include %q has no choices: %w", i, e.Name, ErrSelectionDefect)
			}
			alts := make(map[string]struct{}, len(e.Choices))
			for _, alt := range e.Choices {
				if strings.TrimSpace(alt.URI) == "" {
					return fmt.Errorf("entry %d: choice %q of %q requires a uri", i, alt.Name, e.Name)
				}
				if _, ok := alts[alt.Name]; ok {
					return fmt.Errorf("entry %d: duplicate choice %q in %q", i, alt.Name, e.Name)
				}
				alts[alt.Name] = struct{}{}
			}
		default:
			return fmt.Errorf("entry %d: unknown kind %q", i, e.Kind)
		}
	}
	return nil
}

// UnmarshalYAML accepts both the plain form
//
//	- uri: style/base.yaml
//	- name: lighting
//	  choices: {day: light/day.yaml}
//
// and the tagged form {Include: {...}} / {IncludeVaried: {...}}.
func (e *TemplateEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: template entry must be a mapping", value.Line)
	}

	if len(value.Content) == 2 {
		switch value.Content[0].Value {
		case "Include":
			return e.decodeInclude(value.Content[1])
		case "IncludeVaried":
			return e.decodeVaried(value.Content[1])
		}
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		switch value.Content[i].Value {
		case "uri":
			return e.decodeInclude(value)
		case "choices":
			return e.decodeVaried(value)
		}
	}
	return fmt.Errorf("line %d: template entry needs either uri or choices", value.Line)
}

func (e *TemplateEntry) decodeInclude(value *yaml.Node) error {
	var raw struct {
		URI string `yaml:"uri"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = TemplateEntry{Kind: EntryInclude, URI: raw.URI}
	return nil
}

func (e *TemplateEntry) decodeVaried(value *yaml.Node) error {
	var raw struct {
		Name    string    `yaml:"name"`
		Choices yaml.Node `yaml:"choices"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Choices.Kind != yaml.MappingNode {
		if raw.Choices.Kind == 0 || raw.Choices.Tag == "!!null" {
			*e = TemplateEntry{Kind: EntryIncludeVaried, Name: raw.Name}
			return nil
		}
		return errors.New("choices must be a mapping of name to uri")
	}

	content := raw.Choices.Content
	choices := make([]Alternative, 0, len(content)/2)
	for i := 0; i+1 < len(content); i += 2 {
		var uri string
		if err := content[i+1].Decode(&uri); err != nil {
			return fmt.Errorf("choice %q: %w", content[i].Value, err)
		}
		choices = append(choices, Alternative{Name: content[i].Value, URI: uri})
	}
	*e = TemplateEntry{Kind: EntryIncludeVaried, Name: raw.Name, Choices: choices}
	return nil
}
