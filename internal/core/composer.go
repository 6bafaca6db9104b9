// ABOUTME: PromptBuilder collects selected chunks and renders them into a prompt
// ABOUTME: Orders chunks by pos/sub_pos and joins clauses with ", " and words with " "
package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/models"
)

// Pick is an explicit slot selection
type Pick struct {
	Slot  string `json:"slot"`
	Index int    `json:"index"`
}

// ParsePick parses "slot=index" or "slot:index"
func ParsePick(s string) (Pick, error) {
	sep := strings.LastIndexAny(s, "=:")
	if sep <= 0 || sep == len(s)-1 {
		return Pick{}, fmt.Errorf("invalid pick %q (want slot=index)", s)
	}
	index, err := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err != nil {
		return Pick{}, fmt.Errorf("invalid pick %q: index must be an integer", s)
	}
	return Pick{Slot: strings.TrimSpace(s[:sep]), Index: index}, nil
}

// LookupMiss records a pick that did not resolve
type LookupMiss struct {
	Group  string
	Pick   Pick
	Reason string
}

func (m LookupMiss) Error() string {
	return fmt.Sprintf("skipped %s[%d] in %s: %s", m.Pick.Slot, m.Pick.Index, m.Group, m.Reason)
}

// PromptBuilder accumulates chunks for one prompt
type PromptBuilder struct {
	chunks []models.Chunk
	misses []LookupMiss
	logger *log.Logger
}

// NewPromptBuilder creates an empty builder. A nil logger discards diagnostics.
func NewPromptBuilder(logger *log.Logger) *PromptBuilder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PromptBuilder{logger: logger}
}

// Add copies a chunk into the builder
func (b *PromptBuilder) Add(chunk models.Chunk) *PromptBuilder {
	b.chunks = append(b.chunks, chunk.Clone())
	return b
}

// Append adds every default of group, then the chunk named by each pick.
// Picks that do not resolve are skipped and reported as warnings.
func (b *PromptBuilder) Append(group *models.ChunkGroup, picks []Pick) *PromptBuilder {
	for _, c := range group.Defaults {
		b.Add(c)
	}
	for _, p := range picks {
		slot, ok := group.Slot(p.Slot)
		if !ok {
			b.miss(group, p, "unknown slot")
			continue
		}
		if p.Index < 0 || p.Index >= len(slot.Chunks) {
			b.miss(group, p, fmt.Sprintf("index out of range [0,%d)", len(slot.Chunks)))
			continue
		}
		b.Add(slot.Chunks[p.Index])
	}
	return b
}

func (b *PromptBuilder) miss(group *models.ChunkGroup, p Pick, reason string) {
	m := LookupMiss{Group: group.Source, Pick: p, Reason: reason}
	b.misses = append(b.misses, m)
	b.logger.Warn("wrong chunk", "group", m.Group, "slot", p.Slot, "index", p.Index, "reason", reason)
}

// Len returns the number of chunks collected so far
func (b *PromptBuilder) Len() int {
	return len(b.chunks)
}

// Misses returns the picks skipped by Append
func (b *PromptBuilder) Misses() []LookupMiss {
	return slices.Clone(b.misses)
}

// Build renders the collected chunks. Chunks sharing a pos form one clause
// joined by spaces; clauses are separated by ", ".
func (b *PromptBuilder) Build() models.Prompt {
	ordered := slices.Clone(b.chunks)
	slices.SortStableFunc(ordered, models.CompareChunks)

	var out strings.Builder
	var current int
	for i, c := range ordered {
		group := c.Group()
		switch {
		case i == 0:
			current = group
		case group == current:
			out.WriteString(" ")
		default:
			out.WriteString(", ")
			current = group
		}
		out.WriteString(c.Text)
	}
	return models.Prompt{Render: out.String()}
}
