package cli

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codemorph/internal/gateway/app"
	"codemorph/internal/gateway/config"
	"codemorph/internal/gateway/service/morph"
	mcpadapter "codemorph/internal/mcp"
	"codemorph/internal/sandbox"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the CodeMorph MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start CodeMorph MCP server (stdio)",
		Long:  "Start the CodeMorph MCP server using stdio transport so coding assistants can detect languages, transform code and run snippets.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs go to stderr.
			runner := sandbox.New()
			var pipeline *morph.Pipeline

			cfg, err := config.Load(g.overrides())
			switch {
			case errors.Is(err, config.ErrMissingAPIKey):
				logger := app.NewLogger("", "", cmd.ErrOrStderr())
				logger.Warn().Err(err).Msg("transform tool disabled")
			case err != nil:
				return err
			default:
				logger := app.NewLogger(cfg.Env, cfg.LogLevel, cmd.ErrOrStderr())
				model, closeModel, err := openModel(cmd.Context(), cfg, logger)
				if err != nil {
					return err
				}
				defer closeModel()
				pipeline = morph.NewPipeline(model, logger)
				runner = sandbox.New(sandbox.WithTimeout(cfg.Sandbox.Timeout), sandbox.WithLogger(logger))
			}

			s := mcpadapter.NewServer(pipeline, runner)
			return server.ServeStdio(s)
		},
	}
}
