// Package cli is the codemorph command line: the gateway server, one-shot
// transforms, the sandbox and the MCP server.
package cli

import (
	"github.com/spf13/cobra"

	"codemorph/internal/gateway/config"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	output   string
	provider string
	model    string
	logLevel string
}

// overrides turns the persistent flags into config overrides.
func (g *globalFlags) overrides() config.Override {
	return func(c *config.Config) {
		if g.provider != "" {
			c.LLM.Provider = g.provider
		}
		if g.model != "" {
			c.LLM.Model = g.model
		}
		if g.logLevel != "" {
			c.LogLevel = g.logLevel
		}
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "codemorph",
		Short:         "Rewrite code toward quality goals with an AI model",
		Long:          "CodeMorph rewrites a snippet toward goals such as performance or security, explains the changes, and runs JavaScript in a sandbox.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := parseFormat(g.output)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", string(formatText), "Output format: text, json or yaml")
	cmd.PersistentFlags().StringVar(&g.provider, "provider", "", "LLM provider override: gemini, openai or fake")
	cmd.PersistentFlags().StringVar(&g.model, "model", "", "LLM model override")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(g))
	cmd.AddCommand(newTransformCmd(g))
	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newDetectCmd(g))
	cmd.AddCommand(newGoalsCmd(g))
	cmd.AddCommand(newUsageCmd(g))
	cmd.AddCommand(newMCPCmd(g))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
