package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/internal/server"
)

// serveCommand creates the serve command for running the sync backend.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pedigree sync server",
		Long: `Run the HTTP server the mobile and CLI clients sync against.

Configuration is read from a TOML file and overridden by PEDIGREE_*
environment variables. Without a config file the server listens on
:8080 with an in-memory store, which is enough for local development.
Point it at MongoDB and Redis for real deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}

			srv, err := server.NewFromConfig(cmd.Context(), cfg, c.Logger)
			if err != nil {
				return fmt.Errorf("initialize server: %w", err)
			}

			c.Logger.Info("serving", "addr", cfg.Addr, "store", cfg.Store)
			return srv.Run(cmd.Context(), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
