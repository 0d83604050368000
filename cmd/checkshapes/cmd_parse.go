package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/checkshapes/format"
	"github.com/dhamidi/checkshapes/shapes"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <spec>...",
		Short: "Parse argument specifications and print them in canonical form",
		Example: `  checkshapes parse 'x: [batch..., n]' 'return: [batch..., 1]'
  checkshapes parse --output json 'model.weights[0]: [n, m]'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return fail(cmd, err)
			}

			specs, err := shapes.NewParser().ParseArgumentSpecs(args...)
			if err != nil {
				printParseError(cmd.ErrOrStderr(), err)
				return err
			}

			if err := encoder.Encode(specs); err != nil {
				return fail(cmd, fmt.Errorf("encode: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", format.Text, "output format (text, json)")

	return cmd
}

// printParseError prints err, followed by the offending line and a caret when err is a
// parse error.
func printParseError(w io.Writer, err error) {
	fmt.Fprintln(w, err)

	var spe *shapes.SpecificationParseError
	var dpe *shapes.DocstringParseError
	switch {
	case errors.As(err, &spe):
		fmt.Fprintln(w, spe.Excerpt())
	case errors.As(err, &dpe):
		fmt.Fprintln(w, dpe.Excerpt())
	}
}
