package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"codemorph/internal/gateway/app"
	"codemorph/internal/gateway/config"
	"codemorph/internal/gateway/repository/usage"
	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/llm"
)

func newTransformCmd(g *globalFlags) *cobra.Command {
	var (
		goals    []string
		langFlag string
		write    string
	)

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Rewrite a file toward the selected goals",
		Long:  "Send a file through the transform and analysis calls and print the rewritten code with its analysis. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			parsed, unknown := goal.ParseAll(goals)
			if len(unknown) > 0 {
				return fmt.Errorf("unknown goals: %s", strings.Join(unknown, ", "))
			}
			lang, err := resolveLanguage(langFlag, args[0], code)
			if err != nil {
				return err
			}

			cfg, err := config.Load(g.overrides())
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Env, cfg.LogLevel, cmd.ErrOrStderr())
			model, closeModel, err := openModel(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeModel()

			pipeline := morph.NewPipeline(model, logger)
			res, err := pipeline.Run(cmd.Context(), morph.TransformRequest{Code: code, Goals: parsed, Language: lang}, nil)
			if err != nil {
				return err
			}

			if write != "" {
				if err := os.WriteFile(write, []byte(res.Code), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", write, err)
				}
			}
			return emit(cmd, g, res, func() string { return renderResult(res) })
		},
	}

	cmd.Flags().StringSliceVarP(&goals, "goal", "g", nil, "Goal id, repeatable (see `codemorph goals`)")
	cmd.Flags().StringVarP(&langFlag, "language", "l", "", "Language tag; inferred from the file name or content when omitted")
	cmd.Flags().StringVarP(&write, "write", "w", "", "Also write the transformed code to this path")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

// resolveLanguage prefers the flag, then the file extension, then the
// content heuristics.
func resolveLanguage(flag, path, code string) (language.Tag, error) {
	if flag != "" {
		tag, ok := language.Parse(flag)
		if !ok {
			return "", fmt.Errorf("unknown language %q", flag)
		}
		return tag, nil
	}
	if path != "-" {
		if tag, ok := language.FromFilename(path); ok {
			return tag, nil
		}
	}
	return language.Detect(code), nil
}

// openModel builds the decorated model together with the usage ledger it
// records to. The returned func releases both.
func openModel(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*llm.Gateway, func(), error) {
	ledger, err := app.OpenUsageLedger(ctx, cfg.Usage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}
	model, err := app.NewModel(ctx, cfg.LLM, logger, ledger)
	if err != nil {
		closeLedger(ledger)
		return nil, nil, err
	}
	return model, func() {
		_ = model.Close()
		closeLedger(ledger)
	}, nil
}

func closeLedger(l usage.Ledger) {
	if l != nil {
		_ = l.Close()
	}
}
