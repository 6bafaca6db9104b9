// ABOUTME: Sync commands for Charm cloud synchronization of stored guys
// ABOUTME: Provides status, now, wipe, and keys management
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/prompt-randomizer/internal/charm"
	"github.com/harper/prompt-randomizer/internal/config"
)

// syncClient is the part of the charm client the sync commands use
type syncClient interface {
	ID() (string, error)
	Host() string
	ListKeys(prefix string) ([]string, error)
	Sync() error
	Reset() error
	GetAuthorizedKeys() (string, error)
	Close() error
}

// openSyncClient connects to charm; replaced in tests
var openSyncClient = func(cfg *config.Config) (syncClient, error) {
	client, err := charm.NewClient(charm.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Charm: %w", err)
	}
	return client, nil
}

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

Guys are kept in a local Charm KV database that syncs via SSH keys.
Your guys follow you across devices linked to the same Charm account.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncWipeCmd())
	cmd.AddCommand(newSyncKeysCmd())

	return cmd
}

// withSyncClient loads config, opens the client and closes it after fn
func withSyncClient(fn func(c syncClient) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := openSyncClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSyncClient(func(client syncClient) error {
				out := cmd.OutOrStdout()

				keys, err := client.ListKeys(charm.GuyPrefix)
				if err != nil {
					return err
				}

				id, err := client.ID()
				if err != nil {
					fmt.Fprintln(out, "Status: Not connected")
					fmt.Fprintf(out, "Guys stored locally: %d\n", len(keys))
					fmt.Fprintln(out, "Run 'randomizer sync keys' to check your SSH keys")
					return nil
				}

				fmt.Fprintln(out, "Status: Connected")
				fmt.Fprintf(out, "User ID: %s\n", id)
				fmt.Fprintf(out, "Host: %s\n", client.Host())
				fmt.Fprintf(out, "Guys stored: %d\n", len(keys))
				return nil
			})
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSyncClient(func(client syncClient) error {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
				}
				if err := client.Sync(); err != nil {
					return fmt.Errorf("sync failed: %w", err)
				}
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
				}
				return nil
			})
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe all local data (nuclear option)",
		Long: `Completely wipe all local Charm data.

WARNING: This deletes all locally cached guys. Your cloud data
remains intact and will be re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe ALL local data!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			return withSyncClient(func(client syncClient) error {
				if err := client.Reset(); err != nil {
					return fmt.Errorf("failed to wipe data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Local data wiped successfully")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSyncClient(func(client syncClient) error {
				keys, err := client.GetAuthorizedKeys()
				if err != nil {
					return fmt.Errorf("failed to get authorized keys: %w", err)
				}

				if keys == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No authorized keys found")
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Authorized SSH keys:")
				fmt.Fprintln(cmd.OutOrStdout(), keys)
				return nil
			})
		},
	}
}
