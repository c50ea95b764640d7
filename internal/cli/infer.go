package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/pkg/typecheck"
)

func newInferCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "infer FILE...",
		Short: "Print the inferred type of each document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := newReporter(cmd, opts)
			for _, path := range args {
				doc, err := decodeDocument(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rep.Shape(path, typecheck.Print(typecheck.Infer(doc)))
			}
			return nil
		},
	}
}
