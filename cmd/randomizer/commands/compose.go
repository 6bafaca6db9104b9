// ABOUTME: CLI command to compose a prompt from one chunk group with explicit picks
// ABOUTME: Picks that do not resolve are skipped with a warning
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/core"
	"github.com/harper/prompt-randomizer/internal/library"
)

var (
	composeLibrary string
)

// NewComposeCmd creates compose command
func NewComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose <group> [slot=index ...]",
		Short: "Compose a prompt from explicit selections",
		Long: `Compose a prompt from one chunk group.

All defaults of the group are included, plus the chunk at the given index
of each named slot. Unknown slots and out of range indexes are skipped
and reported as warnings.

Examples:
  randomizer compose sky.yaml mood=0
  randomizer compose portrait/base.yaml style=2 light:1
  randomizer compose --library ./chunks sky.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCompose,
	}

	cmd.Flags().StringVar(&composeLibrary, "library", "", "Chunk library directory (default $RANDOMIZER_LIBRARY)")

	return cmd
}

func runCompose(cmd *cobra.Command, args []string) error {
	picks := make([]core.Pick, 0, len(args)-1)
	for _, raw := range args[1:] {
		p, err := core.ParsePick(raw)
		if err != nil {
			return err
		}
		picks = append(picks, p)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	group, err := library.New(libraryDir(composeLibrary, cfg)).LoadGroup(args[0])
	if err != nil {
		return err
	}

	builder := core.NewPromptBuilder(logger).Append(group, picks)
	prompt := builder.Build()

	if jsonOutput() {
		skipped := make([]string, 0)
		for _, m := range builder.Misses() {
			skipped = append(skipped, m.Error())
		}
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"prompt":  prompt.Render,
			"skipped": skipped,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), prompt.Render)
	return nil
}
