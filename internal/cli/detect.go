package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codemorph/internal/language"
)

type detection struct {
	Language language.Tag `json:"language" yaml:"language"`
	Source   string       `json:"source" yaml:"source"`
}

func newDetectCmd(g *globalFlags) *cobra.Command {
	var byContent bool

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the language of a file",
		Long:  "Report the language tag for a file, from its extension or, with --content or stdin, from its content.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := detection{Source: "extension"}
			tag, ok := language.Tag(""), false
			if !byContent && args[0] != "-" {
				tag, ok = language.FromFilename(args[0])
			}
			if !ok {
				code, err := readSource(cmd, args[0])
				if err != nil {
					return err
				}
				tag, d.Source = language.Detect(code), "content"
			}
			d.Language = tag
			return emit(cmd, g, d, func() string { return fmt.Sprintf("%s\n", d.Language) })
		},
	}

	cmd.Flags().BoolVar(&byContent, "content", false, "Ignore the file extension and inspect the content")

	return cmd
}
