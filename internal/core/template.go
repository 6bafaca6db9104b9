// ABOUTME: Template is the resolved composition plan: includes plus varied choices
// ABOUTME: Loads every referenced chunk group up front, including unchosen alternatives
package core

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harper/prompt-randomizer/internal/library"
	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/models"
)

// Alternative is one candidate group of a varied choice
type Alternative struct {
	Name  string
	Group *models.ChunkGroup
}

// Choice is a named set of alternatives; one is used per generation
type Choice struct {
	Name         string
	Alternatives []Alternative
}

// Alternative returns the alternative with the given name
func (c Choice) Alternative(name string) (Alternative, bool) {
	for _, a := range c.Alternatives {
		if a.Name == name {
			return a, true
		}
	}
	return Alternative{}, false
}

// Template is immutable once loaded
type Template struct {
	Includes []*models.ChunkGroup
	Choices  []Choice
}

// Choice returns the varied choice with the given name
func (t *Template) Choice(name string) (Choice, bool) {
	for _, c := range t.Choices {
		if c.Name == name {
			return c, true
		}
	}
	return Choice{}, false
}

// LoadTemplate resolves every entry of def against lib.
// The first failing file aborts the load.
func LoadTemplate(def models.TemplateDefinition, lib *library.Library, logger *log.Logger) (*Template, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	tmpl := &Template{}
	for _, entry := range def {
		switch entry.Kind {
		case models.EntryInclude:
			group, err := lib.LoadGroup(entry.URI)
			if err != nil {
				return nil, fmt.Errorf("include %s: %w", entry.URI, err)
			}
			logger.Debug("loaded include", "uri", entry.URI, "defaults", len(group.Defaults), "slots", len(group.Variants))
			tmpl.Includes = append(tmpl.Includes, group)

		case models.EntryIncludeVaried:
			choice := Choice{Name: entry.Name, Alternatives: make([]Alternative, 0, len(entry.Choices))}
			for _, alt := range entry.Choices {
				group, err := lib.LoadGroup(alt.URI)
				if err != nil {
					return nil, fmt.Errorf("choice %s/%s: %w", entry.Name, alt.Name, err)
				}
				choice.Alternatives = append(choice.Alternatives, Alternative{Name: alt.Name, Group: group})
			}
			logger.Debug("loaded varied include", "name", entry.Name, "alternatives", len(choice.Alternatives))
			tmpl.Choices = append(tmpl.Choices, choice)
		}
	}
	return tmpl, nil
}
