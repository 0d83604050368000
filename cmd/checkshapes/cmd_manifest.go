package main

import (
	"fmt"

	"github.com/dhamidi/checkshapes/manifest"
	"github.com/dhamidi/checkshapes/shapes"
	"github.com/spf13/cobra"
)

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "manifest <file.yaml>",
		Short:         "Rewrite the docstrings of every function in a YAML manifest",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.LoadFromFile(args[0])
			if err != nil {
				return fail(cmd, err)
			}

			results, err := m.Apply(shapes.NewParser(m.Options()...))
			if err != nil {
				printParseError(cmd.ErrOrStderr(), err)
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "## %s\n", r.Name)
				for _, spec := range r.Specs {
					fmt.Fprintf(out, "# %s\n", spec)
				}
				if r.Docstring != nil {
					fmt.Fprintln(out, *r.Docstring)
				}
			}
			return nil
		},
	}

	return cmd
}
