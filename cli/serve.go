package cli

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Serve the layout API until interrupted.

  POST /api/layout            graph in, positioned graph JSON out
  POST /api/render?format=svg graph in, rendered layout out
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			logger := loggerFromContext(cmd.Context())
			return server.New(cfg, logger.With("component", "server")).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
