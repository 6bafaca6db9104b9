// ABOUTME: Root command, global flags and shared setup for the randomizer CLI
// ABOUTME: Loads .env and configuration and builds the logger used by subcommands
package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/logging"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗  █████╗ ███╗   ██╗██████╗  ██████╗ ███╗   ███╗
██╔══██╗██╔══██╗████╗  ██║██╔══██╗██╔═══██╗████╗ ████║
██████╔╝███████║██╔██╗ ██║██║  ██║██║   ██║██╔████╔██║
██╔══██╗██╔══██║██║╚██╗██║██║  ██║██║   ██║██║╚██╔╝██║
██║  ██║██║  ██║██║ ╚████║██████╔╝╚██████╔╝██║ ╚═╝ ██║
╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝  ╚═════╝ ╚═╝     ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randomizer",
		Short: "Compose randomized image prompts from chunk libraries",
		Long: banner + `

Randomizer builds image-generation prompts from a library of YAML chunk
groups. A template lists the groups to include and the varied choices to
pick between; every run picks one alternative per choice and one chunk
per slot, then orders the chunks by position into a comma separated prompt.

Prompts can be sent to Stable Diffusion, and chat personas ("guys") stored
in Charm can be asked to critique or extend them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "text", "json":
				return nil
			default:
				return fmt.Errorf("invalid --format %q (valid: auto, text, json)", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and warnings")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewRandomizeCmd())
	cmd.AddCommand(NewComposeCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewGuyCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env when present, then the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes diagnostics to stderr at the level implied by the flags.
// --quiet drops info and debug output but keeps warnings.
func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		// skipped picks must stay visible
		level = log.WarnLevel
	}
	var w io.Writer = cmd.ErrOrStderr()
	return logging.New(w, level)
}

func jsonOutput() bool {
	return outputFormat == "json"
}
