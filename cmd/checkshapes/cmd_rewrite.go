package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/checkshapes/shapes"
	"github.com/spf13/cobra"
)

func newRewriteCmd() *cobra.Command {
	var specTexts []string
	var docstringFormat string

	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Document argument shapes in a docstring read from a file or stdin",
		Example: `  checkshapes rewrite doc.txt --spec 'x: [n, 3]' --spec 'return: [n]'
  echo ':param x: input' | checkshapes rewrite --spec 'x: [n]'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := shapes.ParseDocstringFormat(docstringFormat)
			if err != nil {
				return fail(cmd, err)
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fail(cmd, fmt.Errorf("read docstring: %w", err))
			}

			p := shapes.NewParser(shapes.WithDocstringFormat(f))
			specs, err := p.ParseArgumentSpecs(specTexts...)
			if err != nil {
				printParseError(cmd.ErrOrStderr(), err)
				return err
			}

			doc, err := p.RewriteDocstring(string(data), specs)
			if err != nil {
				printParseError(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&specTexts, "spec", "s", nil, "argument specification (repeatable)")
	cmd.Flags().StringVar(&docstringFormat, "docstring-format", string(shapes.DocstringFormatSphinx), "docstring format (none, sphinx)")

	return cmd
}
