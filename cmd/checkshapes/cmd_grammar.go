package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/dhamidi/checkshapes/ebnf/parse"
	"github.com/dhamidi/checkshapes/format"
	"github.com/dhamidi/checkshapes/shapes"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarShowCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string
	var inputFile string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			if inputFile != "" && startProduction == "" {
				return fail(cmd, fmt.Errorf("--input requires --start"))
			}

			f, err := os.Open(filename)
			if err != nil {
				return fail(cmd, fmt.Errorf("open file: %w", err))
			}
			defer f.Close()

			if inputFile != "" {
				input, err := os.ReadFile(inputFile)
				if err != nil {
					return fail(cmd, fmt.Errorf("read input: %w", err))
				}
				node, err := parse.ParseFile(filename, f, startProduction, input, inputFile)
				if err != nil {
					printErrors(err)
					return err
				}
				return format.NewCSTJSONEncoder(cmd.OutOrStdout()).Encode(node)
			}

			grammar, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(err)
				return err
			}

			if startProduction == "" {
				return nil
			}
			if _, err := parse.Compile(grammar, startProduction); err != nil {
				printErrors(err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")
	cmd.Flags().StringVar(&inputFile, "input", "", "parse this file with the grammar and print its syntax tree as JSON")

	return cmd
}

func newGrammarShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "show <" + shapes.GrammarArgumentSpec + "|" + shapes.GrammarDocstring + ">",
		Short:     "Print an embedded grammar",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{shapes.GrammarArgumentSpec, shapes.GrammarDocstring},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, ok := shapes.GrammarSource(args[0])
			if !ok {
				return fmt.Errorf("unknown grammar %q", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		},
	}
}

// printErrors prints each error of an error list on its own line.
func printErrors(err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Println(v.Index(i).Interface())
		}
	} else {
		fmt.Println(err)
	}
}
