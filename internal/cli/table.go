package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/internal/sqlbridge"
	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
)

func newTableCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath   string
		tables   []string
		typeName string
		limit    int
		shape    bool
	)
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Validate SQLite rows against their declared column types",
		Long: `table derives a record type from each table's declared columns and
validates the stored rows against it. SQLite columns are dynamically
typed, so a row can drift from the declaration; this finds those rows.
With --type, rows validate against a schema type instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlbridge.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			names := tables
			if len(names) == 0 {
				names, err = db.Tables(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					return fmt.Errorf("database %s has no tables", dbPath)
				}
			}

			rep := newReporter(cmd, opts)
			if shape {
				for _, name := range names {
					rec, err := db.TableType(ctx, name)
					if err != nil {
						return err
					}
					for _, f := range rec.Fields {
						rep.Shape(name+"."+f.Name, typecheck.Print(f.Type))
					}
				}
				return nil
			}

			var fromSchema descriptor.Descriptor
			if typeName != "" {
				s, err := loadSchema(opts)
				if err != nil {
					return err
				}
				fromSchema, err = s.Resolve(typeName)
				if err != nil {
					return err
				}
			}

			checked, failed := 0, 0
			for _, name := range names {
				expected := fromSchema
				if expected == nil {
					rec, err := db.TableType(ctx, name)
					if err != nil {
						return err
					}
					expected = rec
				}
				rows, err := db.ScanTable(ctx, name, limit)
				if err != nil {
					return err
				}
				for i, row := range rows {
					checked++
					subject := fmt.Sprintf("%s[%d]", name, i)
					if err := typecheck.Validate(row, expected); err != nil {
						rep.Fail(subject, err)
						failed++
						continue
					}
					rep.Pass(subject)
				}
			}
			rep.Summary(checked, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d rows failed", failed, checked)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "SQLite database file")
	cmd.Flags().StringArrayVarP(&tables, "table", "T", nil, "table to check (repeatable, default: all tables)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "schema type to validate rows against")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to scan per table, 0 scans all")
	cmd.Flags().BoolVar(&shape, "shape", false, "print derived column types instead of validating")
	cmd.MarkFlagRequired("db")
	return cmd
}
