package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/buildinfo"
	"github.com/matzehuels/costgraph/pkg/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pipeline views over HTTP",
		Long: `Serve pipeline views over HTTP.

Routes:
  GET /healthz
  GET /api/v1/pipelines
  GET /api/v1/pipelines/{name}/view?cloudProvider=AWS
  GET /api/v1/pipelines/{name}/graph.svg?cloudProvider=AWS
  GET /api/v1/pipelines/{name}/history?cloudProvider=AWS

Views are cached; pass refresh=true to refetch and record a snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			c.Logger.Info("serving", "addr", addr, "api", cfg.APIBaseURL, "cache", cfg.Cache.Backend)
			return server.New(runner, cfg.Pipelines, c.Logger, buildinfo.Version).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8090)")

	return cmd
}
