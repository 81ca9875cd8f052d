package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"codemorph/internal/gateway/app"
	"codemorph/internal/gateway/config"
)

func newUsageCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show daily model usage",
		Long:  "Print per-day, per-model request counts from the configured usage ledger.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The model is never called here, so a missing API key is fine.
			cfg, err := config.Load(g.overrides(), func(c *config.Config) { c.LLM.Provider = "fake" })
			if err != nil {
				return err
			}
			ledger, err := app.OpenUsageLedger(cmd.Context(), cfg.Usage)
			if err != nil {
				return err
			}
			if ledger == nil {
				return errors.New("usage recording is disabled (USAGE_DRIVER=none)")
			}
			defer closeLedger(ledger)

			stats, err := ledger.Daily(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, g, stats, func() string { return renderUsage(stats) })
		},
	}
}
