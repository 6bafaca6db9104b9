// ABOUTME: CLI commands to manage chat personas ("guys") stored in Charm
// ABOUTME: Apply templates, list, show, delete and ask a guy for a completion
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/prompt-randomizer/internal/charm"
	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/guy"
	"github.com/harper/prompt-randomizer/internal/keychain"
	"github.com/harper/prompt-randomizer/internal/llm"
	"github.com/harper/prompt-randomizer/internal/models"
	"github.com/harper/prompt-randomizer/internal/store"
)

var (
	guyName     string
	guyTemplate string
	guyReset    bool
	guyDryRun   bool
	guyOutput   string
	guyRole     string
	guyMessage  string
	guyModel    string
	guyNoReply  bool
)

// openGuyStore opens the charm backed store; replaced in tests
var openGuyStore = func(cfg *config.Config) (*store.Store, func() error, error) {
	client, err := charm.NewClient(charm.ConfigFrom(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Charm: %w", err)
	}
	return store.New(client), client.Close, nil
}

// newCompleter builds the OpenAI client; replaced in tests
var newCompleter = func(cfg *config.Config) (guy.Completer, error) {
	key, err := keychain.FromEnv().Require(keychain.OpenAI)
	if err != nil {
		return nil, err
	}
	llmCfg := llm.ConfigFrom(cfg)
	llmCfg.APIKey = key
	return llm.NewOpenAIClientWithConfig(llmCfg)
}

// NewGuyCmd creates the guy command group
func NewGuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guy",
		Short: "Manage chat personas",
		Long: `Manage chat personas ("guys").

A guy is a named conversation: a history of system, user and assistant
messages plus optional functions. Guys are stored in Charm and sync
across your devices. The guy name defaults to DEFAULT_GUY ("guy").

Examples:
  randomizer guy apply --template guys/critic.yaml --name critic
  randomizer guy ask --name critic --message "portrait, oil, moonlight"
  randomizer guy get --name critic -o yaml
  randomizer guy rm --name critic 3 4
  randomizer guy list`,
	}

	cmd.PersistentFlags().StringVarP(&guyName, "name", "n", "", "Guy name (default $DEFAULT_GUY)")

	cmd.AddCommand(newGuyApplyCmd())
	cmd.AddCommand(newGuyListCmd())
	cmd.AddCommand(newGuyGetCmd())
	cmd.AddCommand(newGuyDeleteCmd())
	cmd.AddCommand(newGuyAskCmd())
	cmd.AddCommand(newGuyRmCmd())

	return cmd
}

func resolveGuyName(cfg *config.Config) string {
	if guyName != "" {
		return guyName
	}
	return cfg.DefaultGuy
}

func newGuyApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update a guy, optionally from a template",
		Long: `Load a guy (creating it if needed), optionally reset its history,
append the messages of a template and store the result.

UserFromFile entries in the template are read relative to the template file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			name := resolveGuyName(cfg)

			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			g, created, err := s.GetOrCreate(name)
			if err != nil {
				return err
			}

			if guyReset {
				g.Reset()
			}
			if guyTemplate != "" {
				tmpl, err := guy.LoadTemplate(guyTemplate)
				if err != nil {
					return err
				}
				if err := guy.Apply(g, tmpl, filepath.Dir(guyTemplate)); err != nil {
					return fmt.Errorf("applying %s: %w", guyTemplate, err)
				}
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "Template applied: %s\n", guyTemplate)
				}
			}

			if guyDryRun {
				return printGuy(cmd.OutOrStdout(), g, "yaml")
			}
			if err := s.Put(g); err != nil {
				return fmt.Errorf("storing guy: %w", err)
			}
			if !quiet {
				verb := "updated"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Guy %q %s (%d messages)\n", name, verb, len(g.History))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&guyTemplate, "template", "t", "", "Template file to apply")
	cmd.Flags().BoolVarP(&guyReset, "reset", "r", false, "Reset the guy's history first")
	cmd.Flags().BoolVarP(&guyDryRun, "dry-run", "d", false, "Print the updated guy without storing it")

	return cmd
}

func newGuyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored guys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			names, err := s.List()
			if err != nil {
				return fmt.Errorf("listing guys: %w", err)
			}

			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			if len(names) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No guys stored")
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tMESSAGES\tDESCRIPTION\n")
			fmt.Fprintf(w, "----\t--------\t-----------\n")
			for _, name := range names {
				g, err := s.Get(name)
				if err != nil {
					fmt.Fprintf(w, "%s\t?\t(%v)\n", name, err)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(g.History), truncate(g.Description, 50))
			}
			return w.Flush()
		},
	}
}

func newGuyGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a guy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			g, err := s.Get(resolveGuyName(cfg))
			if err != nil {
				return err
			}

			format := guyOutput
			if format == "" {
				format = "text"
				if jsonOutput() {
					format = "json"
				}
			}
			return printGuy(cmd.OutOrStdout(), g, format)
		},
	}

	cmd.Flags().StringVarP(&guyOutput, "output", "o", "", "Output format: text, yaml, json")

	return cmd
}

func newGuyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete a guy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			name := resolveGuyName(cfg)
			if err := s.Delete(name); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Guy %q deleted\n", name)
			}
			return nil
		},
	}
}

func newGuyAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Send a message to a guy and print the reply",
		Long: `Append a message to a guy's history, ask the model to continue the
conversation and store both messages.

The message is read from --message, or from stdin when it is piped.
With --no-reply the message is only stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := models.ParseRole(guyRole)
			if err != nil {
				return err
			}
			content, err := readMessage(cmd.InOrStdin(), guyMessage)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			name := resolveGuyName(cfg)
			g, err := s.Get(name)
			if err != nil {
				return err
			}

			if guyNoReply {
				if content == "" {
					return errors.New("nothing to store: no message given")
				}
				if err := g.PushMessage(role, content); err != nil {
					return err
				}
				return s.Put(g)
			}

			completer, err := newCompleter(cfg)
			if err != nil {
				return fmt.Errorf("openai: %w", err)
			}
			reply, askErr := guy.Ask(cmd.Context(), completer, g, guyModel, role, content)
			if err := s.Put(g); err != nil {
				return fmt.Errorf("failed to persist guy's changes: %w", err)
			}
			if askErr != nil {
				return askErr
			}

			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&guyRole, "role", "user", "Role of the message: system, user, assistant, function")
	cmd.Flags().StringVarP(&guyMessage, "message", "m", "", "Message to send (default: stdin when piped)")
	cmd.Flags().StringVar(&guyModel, "model", "", "Chat model (default $GUY_OPENAI_MODEL)")
	cmd.Flags().BoolVar(&guyNoReply, "no-reply", false, "Store the message without asking for a completion")

	return cmd
}

func newGuyRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index...>",
		Short: "Remove messages from a guy's history",
		Long: `Remove history entries by index. Indexes are the numbers shown by
"randomizer guy get"; all of them refer to the history before removal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexes := make([]int, 0, len(args))
			for _, arg := range args {
				i, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid message index %q", arg)
				}
				indexes = append(indexes, i)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, closeStore, err := openGuyStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			g, err := s.Get(resolveGuyName(cfg))
			if err != nil {
				return err
			}
			if err := g.RemoveMessages(indexes...); err != nil {
				return err
			}
			if err := s.Put(g); err != nil {
				return fmt.Errorf("storing guy: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Guy %q now has %d messages\n", g.Name, len(g.History))
			}
			return nil
		},
	}
}

// readMessage returns flag when set, otherwise the piped stdin contents
func readMessage(in io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if f, ok := in.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printGuy(w io.Writer, g *models.Guy, format string) error {
	switch format {
	case "json":
		return writeJSON(w, g)
	case "yaml":
		data, err := yaml.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "text":
		fmt.Fprintf(w, "Name: %s\n", g.Name)
		if g.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", g.Description)
		}
		fmt.Fprintf(w, "Functions: %d\n\n", len(g.Functions))
		for i, m := range g.History {
			fmt.Fprintf(w, "%s (%d)\n%s\n\n", m.Role, i, m.Content)
		}
		return nil
	default:
		return fmt.Errorf("invalid output format %q (valid: text, yaml, json)", format)
	}
}
