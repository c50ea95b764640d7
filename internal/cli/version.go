package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the funtype version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "funtype %s\n", config.Version)
		},
	}
}
