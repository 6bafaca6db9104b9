// ABOUTME: CLI command to generate randomized prompts from a template
// ABOUTME: Optionally submits each prompt to Stable Diffusion and prints the image urls
package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/core"
	"github.com/harper/prompt-randomizer/internal/diffusion"
	"github.com/harper/prompt-randomizer/internal/keychain"
	"github.com/harper/prompt-randomizer/internal/util"
)

var (
	randomizeLibrary string
	randomizeSeed    uint64
	randomizeCount   int
	randomizeSubmit  bool
)

// imageGenerator is satisfied by *diffusion.Client
type imageGenerator interface {
	GenerateImage(ctx context.Context, req diffusion.GenerateRequest) (*diffusion.GenerateResponse, error)
}

// newImageGenerator builds the Stable Diffusion client; replaced in tests
var newImageGenerator = func(cfg *config.Config, logger *log.Logger) (imageGenerator, error) {
	key, err := keychain.FromEnv().Require(keychain.StableDiffusion)
	if err != nil {
		return nil, err
	}
	return diffusion.NewClient(key, diffusion.ProfileFromConfig(cfg),
		diffusion.WithHTTPClient(&http.Client{Timeout: cfg.SDTimeout}),
		diffusion.WithRetry(util.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryDelay}),
		diffusion.WithLogger(logger),
	)
}

type randomizeOutput struct {
	Prompt    string         `json:"prompt"`
	Selection core.Selection `json:"selection"`
	Images    []string       `json:"images,omitempty"`
}

// NewRandomizeCmd creates randomize command
func NewRandomizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randomize [template]",
		Short: "Generate randomized prompts",
		Long: `Generate randomized prompts from a template.

The template defaults to RANDOMIZER_TEMPLATE and chunk groups are resolved
against the library directory (RANDOMIZER_LIBRARY, default "data").
Every referenced group is loaded up front, so a broken alternative fails
the run even if it would not have been picked.

Examples:
  randomizer randomize templates/portrait.yaml
  randomizer randomize --count 5 --seed 42
  randomizer randomize --library ./chunks --submit
  randomizer randomize --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRandomize,
	}

	cmd.Flags().StringVar(&randomizeLibrary, "library", "", "Chunk library directory (default $RANDOMIZER_LIBRARY)")
	cmd.Flags().Uint64Var(&randomizeSeed, "seed", 0, "Seed for reproducible output (0 = random)")
	cmd.Flags().IntVar(&randomizeCount, "count", 1, "Number of prompts to generate")
	cmd.Flags().BoolVar(&randomizeSubmit, "submit", false, "Send each prompt to Stable Diffusion")

	return cmd
}

func runRandomize(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(randomizeCount, "count"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	gen, err := openGenerator(args, cfg, randomizeLibrary, logger, randomizeSeed)
	if err != nil {
		return err
	}

	var images imageGenerator
	if randomizeSubmit {
		images, err = newImageGenerator(cfg, logger)
		if err != nil {
			return fmt.Errorf("stable diffusion: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results := make([]randomizeOutput, 0, randomizeCount)
	for i := 0; i < randomizeCount; i++ {
		res := gen.Generate(nil)
		out := randomizeOutput{Prompt: res.Prompt.Render, Selection: res.Selection}

		if images != nil {
			resp, err := images.GenerateImage(ctx, diffusion.GenerateRequest{
				Prompt:         out.Prompt,
				NegativePrompt: cfg.SDNegativePrompt,
			})
			if err != nil {
				return fmt.Errorf("submitting prompt %d: %w", i+1, err)
			}
			out.Images = resp.Output
			logger.Info("image requested", "id", resp.ID, "status", resp.Status, "track_id", resp.TrackID)
		}
		results = append(results, out)

		if !jsonOutput() {
			fmt.Fprintln(cmd.OutOrStdout(), out.Prompt)
			for _, url := range out.Images {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", url)
			}
		}
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	return nil
}

// openGenerator loads the template and library named by args, flags and config.
// A zero seed falls back to RANDOMIZER_SEED; zero there means unseeded.
func openGenerator(args []string, cfg *config.Config, libFlag string, logger *log.Logger, seed uint64) (*core.Generator, error) {
	path, err := templatePath(args, cfg)
	if err != nil {
		return nil, err
	}
	opts := []core.GeneratorOption{core.WithLogger(logger)}
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed != 0 {
		opts = append(opts, core.WithSeed(seed))
	}
	gen, err := core.NewGenerator(path, libraryDir(libFlag, cfg), opts...)
	if err != nil {
		return nil, err
	}
	return gen, nil
}
