// Package cli implements the funtype command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/internal/config"
	"github.com/funvibe/funtype/internal/diagnostics"
	"github.com/funvibe/funtype/internal/schema"
	"github.com/funvibe/funtype/pkg/value"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	schemaPath string
	noColor    bool
}

// newRootCmd builds the command tree. Each call returns a fresh tree,
// so runs never share flag state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "funtype",
		Short: "Type-check YAML, JSON, protobuf and SQLite data against a schema",
		Long: `funtype validates structured data against type declarations.

Declarations live in a funtype.yaml file, found by searching upward
from the working directory. The --schema flag and the ` + config.EnvSchema + `
environment variable override the search.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.schemaPath, "schema", "s", "", "schema file (default: search upward for funtype.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.AddCommand(
		newCheckCmd(opts),
		newInferCmd(opts),
		newProtoCmd(opts),
		newTableCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and exits nonzero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "funtype: %s\n", err)
		os.Exit(1)
	}
}

// schemaLocation resolves the schema path from the --schema flag, the
// environment, or the walk-up search. Empty with a nil error means no
// schema file exists.
func schemaLocation(opts *rootOptions) (string, error) {
	if opts.schemaPath != "" {
		return opts.schemaPath, nil
	}
	if path := os.Getenv(config.EnvSchema); path != "" {
		return path, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return schema.Find(dir)
}

// loadSchema loads the schema, failing when none can be found.
func loadSchema(opts *rootOptions) (*schema.Schema, error) {
	path, err := schemaLocation(opts)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no schema file found; pass --schema or set %s", config.EnvSchema)
	}
	return schema.Load(path)
}

func newReporter(cmd *cobra.Command, opts *rootOptions) *diagnostics.Reporter {
	if opts.noColor {
		return diagnostics.NewReporter(cmd.OutOrStdout(), diagnostics.WithColor(false))
	}
	return diagnostics.NewReporter(cmd.OutOrStdout())
}

// decodeDocument reads one document, picking the decoder by file
// extension.
func decodeDocument(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.DecodeJSON(data)
	case ".yaml", ".yml":
		return schema.DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported document extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}
