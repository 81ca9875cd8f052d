package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"codemorph/internal/sandbox"
)

// errRunFailed makes the process exit non-zero; the outcome is already printed.
var errRunFailed = errors.New("execution failed")

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		langFlag string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run JavaScript or TypeScript in the sandbox",
		Long:  "Execute a file in an isolated runtime and print the captured console output. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			lang, err := resolveLanguage(langFlag, args[0], code)
			if err != nil {
				return err
			}

			runner := sandbox.New(sandbox.WithTimeout(timeout))
			out := runner.Run(cmd.Context(), code, lang)
			if err := emit(cmd, g, out, func() string { return renderOutcome(out) }); err != nil {
				return err
			}
			if out.IsError {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&langFlag, "language", "l", "", "Language tag; inferred from the file name or content when omitted")
	cmd.Flags().DurationVar(&timeout, "timeout", sandbox.DefaultTimeout, "Execution time limit")

	return cmd
}
