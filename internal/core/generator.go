// ABOUTME: Generator loads a template once and renders randomized prompts from it
// ABOUTME: Randomness is passed in explicitly so runs are reproducible under a seed
package core

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harper/prompt-randomizer/internal/library"
	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/models"
)

// Selection describes what one generation picked
type Selection struct {
	// Choices maps each varied choice to the alternative used
	Choices map[string]string `json:"choices"`
	// Slots maps "source#slot" to the chunk index used
	Slots map[string]int `json:"slots"`
}

// Result is a rendered prompt together with the selection that produced it
type Result struct {
	Prompt    models.Prompt `json:"prompt"`
	Selection Selection     `json:"selection"`
}

// Generator renders prompts from a loaded template
type Generator struct {
	template *Template
	logger   *log.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithLogger sets the logger used for load progress and diagnostics
func WithLogger(logger *log.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSeed makes the default random source deterministic
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.rng = NewRand(seed)
	}
}

// NewRand returns a PCG backed source for seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewGenerator parses the template at templatePath and loads every chunk
// group it references from libraryRoot.
func NewGenerator(templatePath, libraryRoot string, opts ...GeneratorOption) (*Generator, error) {
	g := newGenerator(opts)

	def, err := library.LoadTemplateDefinition(templatePath)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	tmpl, err := LoadTemplate(def, library.New(libraryRoot), g.logger)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", templatePath, err)
	}
	g.template = tmpl
	g.logger.Debug("template ready", "path", templatePath, "includes", len(tmpl.Includes), "choices", len(tmpl.Choices))
	return g, nil
}

// NewGeneratorFromTemplate wraps an already loaded template
func NewGeneratorFromTemplate(tmpl *Template, opts ...GeneratorOption) *Generator {
	g := newGenerator(opts)
	g.template = tmpl
	return g
}

func newGenerator(opts []GeneratorOption) *Generator {
	g := &Generator{logger: logging.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Template returns the loaded template. Callers must not modify it.
func (g *Generator) Template() *Template {
	return g.template
}

// Randomize renders one prompt. A nil rng uses the generator's own source.
func (g *Generator) Randomize(rng *rand.Rand) models.Prompt {
	return g.Generate(rng).Prompt
}

// Generate renders one prompt and reports what was selected
func (g *Generator) Generate(rng *rand.Rand) Result {
	if rng == nil {
		g.mu.Lock()
		defer g.mu.Unlock()
		rng = g.rng
	}

	sel := Selection{
		Choices: make(map[string]string, len(g.template.Choices)),
		Slots:   make(map[string]int),
	}
	builder := NewPromptBuilder(g.logger)

	for _, group := range g.template.Includes {
		randomizeGroup(rng, group, builder, sel)
	}
	for _, choice := range g.template.Choices {
		alt := choice.Alternatives[rng.IntN(len(choice.Alternatives))]
		sel.Choices[choice.Name] = alt.Name
		randomizeGroup(rng, alt.Group, builder, sel)
	}

	return Result{Prompt: builder.Build(), Selection: sel}
}

func randomizeGroup(rng *rand.Rand, group *models.ChunkGroup, builder *PromptBuilder, sel Selection) {
	for _, c := range group.Defaults {
		builder.Add(c)
	}
	for _, slot := range group.Variants {
		i := rng.IntN(len(slot.Chunks))
		sel.Slots[group.Source+"#"+slot.Name] = i
		builder.Add(slot.Chunks[i])
	}
}
