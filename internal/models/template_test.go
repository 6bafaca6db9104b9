// ABOUTME: Tests for template definition decoding
// ABOUTME: Covers plain and tagged entry forms plus validation failures
package models

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTemplateDefinition_PlainForm(t *testing.T) {
	doc := `
- uri: base.yaml
- name: lighting
  choices:
    night: light/night.yaml
    day: light/day.yaml
`
	var def TemplateDefinition
	if err := yaml.Unmarshal([]byte(doc), &def); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(def) != 2 {
		t.Fatalf("len(def) = %d, want 2", len(def))
	}

	if def[0].Kind != EntryInclude || def[0].URI != "base.yaml" {
		t.Errorf("entry 0 = %+v, want include base.yaml", def[0])
	}

	varied := def[1]
	if varied.Kind != EntryIncludeVaried || varied.Name != "lighting" {
		t.Fatalf("entry 1 = %+v, want varied include lighting", varied)
	}
	if len(varied.Choices) != 2 {
		t.Fatalf("len(choices) = %d, want 2", len(varied.Choices))
	}
	// file order is preserved
	if varied.Choices[0] != (Alternative{Name: "night", URI: "light/night.yaml"}) {
		t.Errorf("choice 0 = %+v", varied.Choices[0])
	}
	if varied.Choices[1] != (Alternative{Name: "day", URI: "light/day.yaml"}) {
		t.Errorf("choice 1 = %+v", varied.Choices[1])
	}

	if err := def.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTemplateDefinition_TaggedForm(t *testing.T) {
	doc := `
- Include:
    uri: base.yaml
- IncludeVaried:
    name: lighting
    choices:
      day: light/day.yaml
`
	var def TemplateDefinition
	if err := yaml.Unmarshal([]byte(doc), &def); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(def) != 2 {
		t.Fatalf("len(def) = %d, want 2", len(def))
	}
	if def[0].Kind != EntryInclude || def[0].URI != "base.yaml" {
		t.Errorf("entry 0 = %+v", def[0])
	}
	if def[1].Kind != EntryIncludeVaried || def[1].Name != "lighting" || len(def[1].Choices) != 1 {
		t.Errorf("entry 1 = %+v", def[1])
	}
}

func TestTemplateDefinition_DecodeErrors(t *testing.T) {
	docs := map[string]string{
		"scalar entry":       "- base.yaml\n",
		"unknown keys":       "- path: base.yaml\n",
		"choices a sequence": "- name: x\n  choices:\n    - a.yaml\n",
		"root mapping":       "uri: base.yaml\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var def TemplateDefinition
			if err := yaml.Unmarshal([]byte(doc), &def); err == nil {
				t.Errorf("expected error, got %+v", def)
			}
		})
	}
}

func TestTemplateDefinition_Validate(t *testing.T) {
	tests := []struct {
		name       string
		def        TemplateDefinition
		wantErr    bool
		wantDefect bool
	}{
		{
			name: "empty template",
			def:  TemplateDefinition{},
		},
		{
			name:    "include without uri",
			def:     TemplateDefinition{{Kind: EntryInclude}},
			wantErr: true,
		},
		{
			name:       "varied without choices",
			def:        TemplateDefinition{{Kind: EntryIncludeVaried, Name: "x"}},
			wantErr:    true,
			wantDefect: true,
		},
		{
			name: "duplicate varied name",
			def: TemplateDefinition{
				{Kind: EntryIncludeVaried, Name: "x", Choices: []Alternative{{Name: "a", URI: "a.yaml"}}},
				{Kind: EntryIncludeVaried, Name: "x", Choices: []Alternative{{Name: "b", URI: "b.yaml"}}},
			},
			wantErr: true,
		},
		{
			name: "duplicate alternative",
			def: TemplateDefinition{
				{Kind: EntryIncludeVaried, Name: "x", Choices: []Alternative{
					{Name: "a", URI: "a.yaml"},
					{Name: "a", URI: "b.yaml"},
				}},
			},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			def:     TemplateDefinition{{Kind: "other", URI: "a.yaml"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantDefect && !errors.Is(err, ErrSelectionDefect) {
				t.Errorf("Validate() error = %v, want ErrSelectionDefect", err)
			}
		})
	}
}
