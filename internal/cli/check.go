package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/internal/schema"
	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		typeName string
		expr     string
	)
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate YAML or JSON documents against a type",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := resolveExpected(opts, typeName, expr)
			if err != nil {
				return err
			}
			rep := newReporter(cmd, opts)
			failed := 0
			for _, path := range args {
				doc, err := decodeDocument(path)
				if err != nil {
					rep.Fail(path, err)
					failed++
					continue
				}
				if err := typecheck.Validate(doc, expected); err != nil {
					rep.Fail(path, err)
					failed++
					continue
				}
				rep.Pass(path)
			}
			rep.Summary(len(args), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "declared type to validate against")
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "type expression to validate against")
	return cmd
}

// resolveExpected turns the --type and --expr flags into the
// descriptor documents are validated against. A bare expression still
// works without a schema file; only builtin names resolve then.
func resolveExpected(opts *rootOptions, typeName, expr string) (descriptor.Descriptor, error) {
	switch {
	case typeName != "" && expr != "":
		return nil, errors.New("--type and --expr are mutually exclusive")
	case typeName != "":
		s, err := loadSchema(opts)
		if err != nil {
			return nil, err
		}
		return s.Resolve(typeName)
	case expr != "":
		path, err := schemaLocation(opts)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return schema.ParseType(expr)
		}
		s, err := schema.Load(path)
		if err != nil {
			return nil, err
		}
		return s.ResolveExpr(expr)
	default:
		return nil, errors.New("one of --type or --expr is required")
	}
}
