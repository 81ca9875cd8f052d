package cli

import (
	"github.com/spf13/cobra"

	"codemorph/internal/goal"
)

func newGoalsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "List transformation goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := goal.Catalog()
			return emit(cmd, g, opts, func() string { return renderGoals(opts) })
		},
	}
}
