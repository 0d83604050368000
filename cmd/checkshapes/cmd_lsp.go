package main

import (
	"github.com/dhamidi/checkshapes/lsp"
	"github.com/dhamidi/checkshapes/shapes"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server for .shapes files",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, shapes.NewParser())
			return server.RunStdio()
		},
	}
}
