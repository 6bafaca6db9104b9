// ABOUTME: CLI command to show what a template loads
// ABOUTME: Lists includes, varied choices, alternatives and slot sizes
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/models"
)

var (
	inspectLibrary string
)

type groupSummary struct {
	Source   string         `json:"source"`
	Defaults int            `json:"defaults"`
	Slots    map[string]int `json:"slots"`
	Order    []string       `json:"-"`
}

type choiceSummary struct {
	Name         string                  `json:"name"`
	Alternatives map[string]groupSummary `json:"alternatives"`
	Order        []string                `json:"-"`
}

type templateSummary struct {
	Includes     []groupSummary  `json:"includes"`
	Choices      []choiceSummary `json:"choices"`
	Combinations uint64          `json:"combinations"`
}

// NewInspectCmd creates inspect command
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [template]",
		Short: "Show the groups, slots and choices of a template",
		Long: `Load a template and describe it.

Shows every included group with its default count and slot sizes, every
varied choice with its alternatives, and the number of distinct
selections the template can produce.

Examples:
  randomizer inspect templates/portrait.yaml
  randomizer inspect --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().StringVar(&inspectLibrary, "library", "", "Chunk library directory (default $RANDOMIZER_LIBRARY)")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen, err := openGenerator(args, cfg, inspectLibrary, newLogger(cmd, cfg), 0)
	if err != nil {
		return err
	}
	tmpl := gen.Template()

	summary := templateSummary{Includes: []groupSummary{}, Choices: []choiceSummary{}, Combinations: 1}
	for _, g := range tmpl.Includes {
		s := summarize(g)
		summary.Includes = append(summary.Includes, s)
		summary.Combinations = mulSat(summary.Combinations, selections(s))
	}
	for _, c := range tmpl.Choices {
		cs := choiceSummary{Name: c.Name, Alternatives: make(map[string]groupSummary)}
		var total uint64
		for _, alt := range c.Alternatives {
			s := summarize(alt.Group)
			cs.Alternatives[alt.Name] = s
			cs.Order = append(cs.Order, alt.Name)
			total = addSat(total, selections(s))
		}
		summary.Choices = append(summary.Choices, cs)
		summary.Combinations = mulSat(summary.Combinations, total)
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), summary)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "GROUP\tDEFAULTS\tSLOTS\n")
	fmt.Fprintf(w, "-----\t--------\t-----\n")
	for _, s := range summary.Includes {
		fmt.Fprintf(w, "%s\t%d\t%s\n", truncate(s.Source, 40), s.Defaults, slotList(s))
	}
	for _, c := range summary.Choices {
		for _, name := range c.Order {
			s := c.Alternatives[name]
			fmt.Fprintf(w, "%s\t%d\t%s\n", truncate(fmt.Sprintf("%s/%s: %s", c.Name, name, s.Source), 40), s.Defaults, slotList(s))
		}
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d include(s), %d choice(s), %d distinct selection(s)\n",
			len(summary.Includes), len(summary.Choices), summary.Combinations)
	}
	return nil
}

func summarize(g *models.ChunkGroup) groupSummary {
	s := groupSummary{Source: g.Source, Defaults: len(g.Defaults), Slots: make(map[string]int)}
	for _, slot := range g.Variants {
		s.Slots[slot.Name] = len(slot.Chunks)
		s.Order = append(s.Order, slot.Name)
	}
	return s
}

func slotList(s groupSummary) string {
	if len(s.Order) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(s.Order))
	for _, name := range s.Order {
		parts = append(parts, fmt.Sprintf("%s(%d)", name, s.Slots[name]))
	}
	return strings.Join(parts, " ")
}

// selections counts the distinct slot picks of one group
func selections(s groupSummary) uint64 {
	n := uint64(1)
	for _, size := range s.Slots {
		n = mulSat(n, uint64(size))
	}
	return n
}

func mulSat(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > ^uint64(0)/b {
		return ^uint64(0)
	}
	return a * b
}

func addSat(a, b uint64) uint64 {
	if a > ^uint64(0)-b {
		return ^uint64(0)
	}
	return a + b
}
