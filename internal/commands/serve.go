package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/api"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statement upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h := api.NewHandler(a.evaluator(), a.cfg.Server, Version, a.log)
			return h.Serve(ctx, a.cfg.Addr())
		},
	}

	cmd.Flags().StringVar(&a.overrides.Server.Host, "host", "", "listen host (default from config, 0.0.0.0)")
	cmd.Flags().IntVarP(&a.overrides.Server.Port, "port", "p", 0, "listen port (default from config, 8000)")
	cmd.Flags().StringVar(&a.overrides.Server.UploadDir, "upload-dir", "", "directory for temporary uploads")

	return cmd
}
