package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codemorph/internal/gateway/app"
	"codemorph/internal/gateway/config"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CodeMorph gateway",
		Long:  "Serve the MorphService RPC API, the session websocket and the file endpoints until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.overrides(), func(c *config.Config) {
				if port != "" {
					c.Port = port
				}
			})
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Env, cfg.LogLevel, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(a.Start)
			eg.Go(func() error {
				<-ctx.Done()
				logger.Info().Msg("Shutting down server...")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return a.Shutdown(sctx)
			})
			return eg.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen address, e.g. 8081 or :8081")

	return cmd
}
