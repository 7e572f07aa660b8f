package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/person"
	"github.com/pedigree-app/pedigree/pkg/syncq"
)

// defaultServer is used when --server is not given and no account
// file exists.
const defaultServer = "http://localhost:8080"

// account is the locally stored sync profile, written on login.
type account struct {
	Server    string    `json:"server"`
	GoogleSub string    `json:"google_sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// syncCommand creates the sync command with subcommands.
func (c *CLI) syncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync a local tree with a pedigree server",
		Long: `Push and pull family trees against a pedigree server.

Log in once with your Google subject; the account is stored in
~/.config/pedigree/account.json and reused by push, pull, and delete.`,
	}

	cmd.AddCommand(c.syncLoginCommand())
	cmd.AddCommand(c.syncLogoutCommand())
	cmd.AddCommand(c.syncWhoamiCommand())
	cmd.AddCommand(c.syncPushCommand())
	cmd.AddCommand(c.syncPullCommand())
	cmd.AddCommand(c.syncDeleteCommand())

	return cmd
}

// syncLoginCommand creates the login subcommand.
func (c *CLI) syncLoginCommand() *cobra.Command {
	var (
		server    string
		googleSub string
		email     string
		name      string
		token     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Register this machine with a pedigree server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if googleSub == "" || email == "" {
				return fmt.Errorf("--google-sub and --email are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Signing in...")
			spinner.Start()

			client := syncq.NewClient(server, googleSub, token)
			id, err := client.Login(ctx, email, name)
			if err != nil {
				spinner.StopWithError("Sign-in failed")
				return err
			}
			spinner.Stop()

			acct := account{
				Server:    server,
				GoogleSub: id.GoogleSub,
				Email:     id.Email,
				Name:      id.Name,
				Token:     token,
				CreatedAt: time.Now(),
			}
			if acct.Token == "" {
				acct.Token = id.SessionID
			}
			if err := saveAccount(acct); err != nil {
				return fmt.Errorf("save account: %w", err)
			}

			printSuccess("Logged in as %s", id.Email)
			printDetail("Run 'pedigree sync push people.json' to upload a tree")
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", defaultServer, "pedigree server base URL")
	cmd.Flags().StringVar(&googleSub, "google-sub", "", "Google account subject")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&token, "token", "", "access token (dev servers accept configured static tokens)")

	return cmd
}

// syncLogoutCommand creates the logout subcommand.
func (c *CLI) syncLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored sync account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteAccount(); err != nil {
				return fmt.Errorf("delete account: %w", err)
			}
			if err := deleteSnapshot(); err != nil {
				return err
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// syncWhoamiCommand creates the whoami subcommand.
func (c *CLI) syncWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored sync account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := loadAccount()
			if err != nil {
				return err
			}

			printSuccess("Sync Account")
			printKeyValue("Server", acct.Server)
			printKeyValue("Subject", acct.GoogleSub)
			printKeyValue("Email", acct.Email)
			if acct.Name != "" {
				printKeyValue("Name", acct.Name)
			}
			printKeyValue("Logged in", acct.CreatedAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}

// syncPushCommand creates the push subcommand.
func (c *CLI) syncPushCommand() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "push [people.json]",
		Short: "Upload a local tree as a delta patch",
		Long: `Upload a local tree to the server.

Push diffs the file against the snapshot cached by the last push or
pull and sends only the changed people as one coalesced patch. The
first push, or --replace, uploads the whole tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := person.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			client, err := accountClient()
			if err != nil {
				return err
			}
			base, err := loadSnapshot()
			if err != nil {
				return err
			}
			full := replace || base == nil

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Pushing %d people...", len(g)))
			spinner.Start()

			sent, err := pushTree(ctx, client, g, base, full)
			if err != nil {
				spinner.StopWithError("Push failed")
				return err
			}
			spinner.Stop()

			if !full && sent == 0 {
				printInfo("Already up to date")
				return nil
			}
			if err := saveSnapshot(g); err != nil {
				return fmt.Errorf("cache snapshot: %w", err)
			}
			if full {
				printSuccess("Pushed %d people", len(g))
			} else {
				printSuccess("Pushed %d changes", sent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "upload the whole tree instead of a delta patch")

	return cmd
}

// pushTree uploads the tree. A delta push diffs against the base
// snapshot and routes the result through a patch queue, so the wire
// carries one coalesced patch; a full push replaces the remote tree
// wholesale. It returns the number of operations sent, zero when
// nothing changed.
func pushTree(ctx context.Context, client *syncq.Client, g, base person.Graph, full bool) (int, error) {
	if full {
		if err := client.Replace(ctx, g); err != nil {
			return 0, err
		}
		return len(g), nil
	}

	patch := syncq.Diff(base, g)
	if patch.IsEmpty() {
		return 0, nil
	}
	q := syncq.NewQueue(client)
	q.Enqueue(patch)
	if err := q.Flush(ctx); err != nil {
		return 0, err
	}
	return len(patch.Upserts) + len(patch.Deletes), nil
}

// syncPullCommand creates the pull subcommand.
func (c *CLI) syncPullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the remote tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := accountClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Pulling...")
			spinner.Start()

			g, err := client.Fetch(ctx)
			if err != nil {
				spinner.StopWithError("Pull failed")
				return err
			}
			spinner.Stop()

			if err := person.WriteGraphFile(g, output); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			if err := saveSnapshot(g); err != nil {
				return fmt.Errorf("cache snapshot: %w", err)
			}

			printSuccess("Pulled %d people", len(g))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "people.json", "output file")

	return cmd
}

// syncDeleteCommand creates the delete subcommand.
func (c *CLI) syncDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the remote tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the remote tree without --yes")
			}

			client, err := accountClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := client.Remove(ctx); err != nil {
				return err
			}
			if err := deleteSnapshot(); err != nil {
				return err
			}
			printSuccess("Remote tree deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	return cmd
}

// =============================================================================
// Account Storage
// =============================================================================

func accountPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "account.json"), nil
}

// accountClient builds a backend client from the stored account.
func accountClient() (*syncq.Client, error) {
	acct, err := loadAccount()
	if err != nil {
		return nil, err
	}
	return syncq.NewClient(acct.Server, acct.GoogleSub, acct.Token), nil
}

func loadAccount() (*account, error) {
	path, err := accountPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("not logged in (run 'pedigree sync login' first)")
	}
	if err != nil {
		return nil, fmt.Errorf("read account: %w", err)
	}
	var acct account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("parse account: %w", err)
	}
	return &acct, nil
}

func saveAccount(acct account) error {
	path, err := accountPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(acct, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func deleteAccount() error {
	path, err := accountPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// Snapshot Cache
// =============================================================================

// snapshotPath is the locally cached copy of the tree as last synced.
// Push diffs against it to build delta patches.
func snapshotPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshot.json"), nil
}

// loadSnapshot returns the cached base snapshot, or nil when none has
// been synced yet.
func loadSnapshot() (person.Graph, error) {
	path, err := snapshotPath()
	if err != nil {
		return nil, err
	}
	g, err := person.ReadGraphFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot cache: %w", err)
	}
	return g, nil
}

func saveSnapshot(g person.Graph) error {
	path, err := snapshotPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return person.WriteGraphFile(g, path)
}

func deleteSnapshot() error {
	path, err := snapshotPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
