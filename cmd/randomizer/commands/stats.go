// ABOUTME: CLI command to sample a template many times and report pick frequencies
// ABOUTME: Used to check that alternatives and slot chunks are chosen uniformly
package commands

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/models"
)

var (
	statsLibrary string
	statsRuns    int
	statsSeed    uint64
)

type pickStat struct {
	Choice  string  `json:"choice"`
	Option  string  `json:"option"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
	Uniform float64 `json:"uniform"`
}

// NewStatsCmd creates stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [template]",
		Short: "Report how often each alternative and chunk is picked",
		Long: `Generate many prompts and report selection frequencies.

For every varied choice the share of runs using each alternative is shown
next to the uniform expectation. Slot picks are reported per group.

Examples:
  randomizer stats templates/portrait.yaml
  randomizer stats --runs 10000 --seed 7
  randomizer stats --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStats,
	}

	cmd.Flags().StringVar(&statsLibrary, "library", "", "Chunk library directory (default $RANDOMIZER_LIBRARY)")
	cmd.Flags().IntVar(&statsRuns, "runs", 1000, "Number of prompts to sample")
	cmd.Flags().Uint64Var(&statsSeed, "seed", 0, "Seed for reproducible output (0 = random)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(statsRuns, "runs"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen, err := openGenerator(args, cfg, statsLibrary, newLogger(cmd, cfg), statsSeed)
	if err != nil {
		return err
	}
	tmpl := gen.Template()

	choiceCounts := make(map[string]map[string]int)
	slotCounts := make(map[string]map[int]int)
	for i := 0; i < statsRuns; i++ {
		res := gen.Generate(nil)
		for choice, alt := range res.Selection.Choices {
			if choiceCounts[choice] == nil {
				choiceCounts[choice] = make(map[string]int)
			}
			choiceCounts[choice][alt]++
		}
		for slot, idx := range res.Selection.Slots {
			if slotCounts[slot] == nil {
				slotCounts[slot] = make(map[int]int)
			}
			slotCounts[slot][idx]++
		}
	}

	var stats []pickStat
	for _, c := range tmpl.Choices {
		for _, alt := range c.Alternatives {
			n := choiceCounts[c.Name][alt.Name]
			stats = append(stats, pickStat{
				Choice:  c.Name,
				Option:  alt.Name,
				Count:   n,
				Share:   float64(n) / float64(statsRuns),
				Uniform: 1 / float64(len(c.Alternatives)),
			})
		}
	}

	sizes := make(map[string]int)
	addSizes := func(g *models.ChunkGroup) {
		for _, slot := range g.Variants {
			sizes[g.Source+"#"+slot.Name] = len(slot.Chunks)
		}
	}
	for _, g := range tmpl.Includes {
		addSizes(g)
	}
	for _, c := range tmpl.Choices {
		for _, alt := range c.Alternatives {
			addSizes(alt.Group)
		}
	}

	slots := make([]string, 0, len(sizes))
	for slot := range sizes {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		counts := slotCounts[slot]
		total := 0
		for _, n := range counts {
			total += n
		}
		for idx := 0; idx < sizes[slot]; idx++ {
			st := pickStat{
				Choice:  slot,
				Option:  strconv.Itoa(idx),
				Count:   counts[idx],
				Uniform: 1 / float64(sizes[slot]),
			}
			if total > 0 {
				st.Share = float64(counts[idx]) / float64(total)
			}
			stats = append(stats, st)
		}
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"runs": statsRuns, "picks": stats})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CHOICE\tPICK\tCOUNT\tSHARE\tUNIFORM\n")
	fmt.Fprintf(w, "------\t----\t-----\t-----\t-------\n")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\n", truncate(s.Choice, 40), s.Option, s.Count, s.Share, s.Uniform)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d run(s)\n", statsRuns)
	}
	return nil
}
