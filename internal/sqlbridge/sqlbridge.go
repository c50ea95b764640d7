// Package sqlbridge derives type descriptors from SQLite table
// declarations and reads rows back as runtime values.
//
// SQLite columns are dynamically typed: a column declared INTEGER can
// still hold text that failed numeric coercion. Deriving a record
// descriptor from the declared schema and validating scanned rows
// against it surfaces exactly that drift.
package sqlbridge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/value"
)

// DB wraps a SQLite database handle.
type DB struct {
	conn *sql.DB
}

// Open opens a SQLite database file. Use ":memory:" for a transient
// database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Tables lists the user tables of the database.
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableType derives a closed record descriptor from a table's
// declared columns. Column types map by SQLite affinity; nullable
// columns widen with None.
func (db *DB) TableType(ctx context.Context, table string) (descriptor.Record, error) {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return descriptor.Record{}, fmt.Errorf("reading schema of %s: %w", table, err)
	}
	defer rows.Close()

	rec := descriptor.Record{Name: table, Closed: true}
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return descriptor.Record{}, err
		}
		ct := columnType(declType)
		if notNull == 0 {
			ct = descriptor.NewUnion(ct, descriptor.Nominal{Class: descriptor.NoneClass})
		}
		rec.Fields = append(rec.Fields, descriptor.Field{Name: name, Type: ct, Required: true})
	}
	if err := rows.Err(); err != nil {
		return descriptor.Record{}, err
	}
	if len(rec.Fields) == 0 {
		return descriptor.Record{}, fmt.Errorf("table %q not found", table)
	}
	return rec, nil
}

// ScanTable reads up to limit rows as mappings keyed by column name.
// A limit of 0 reads everything.
func (db *DB) ScanTable(ctx context.Context, table string, limit int) ([]value.Value, error) {
	query := fmt.Sprintf("SELECT * FROM %s", quoteIdent(table))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		m := value.NewMap()
		for i, col := range cols {
			cv, err := columnValue(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			m.Set(&value.Text{Value: col}, cv)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// columnType maps a declared column type to a descriptor following
// SQLite's affinity rules: INT wins over CHAR ("VARINT" is INTEGER),
// an empty declaration is a blob, and NUMERIC may hold either int or
// real.
func columnType(declType string) descriptor.Descriptor {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "INT"):
		return descriptor.Primitive{Kind: descriptor.Integer}
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return descriptor.Primitive{Kind: descriptor.Text}
	case t == "", strings.Contains(t, "BLOB"):
		return descriptor.Primitive{Kind: descriptor.Bytes}
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return descriptor.Primitive{Kind: descriptor.Float}
	default:
		return descriptor.NewUnion(
			descriptor.Primitive{Kind: descriptor.Integer},
			descriptor.Primitive{Kind: descriptor.Float},
		)
	}
}

func columnValue(raw any) (value.Value, error) {
	switch v := raw.(type) {
	case nil:
		return value.NIL, nil
	case int64:
		return &value.Integer{Value: v}, nil
	case float64:
		return &value.Float{Value: v}, nil
	case string:
		return &value.Text{Value: v}, nil
	case []byte:
		return &value.Bytes{Value: v}, nil
	case bool:
		return value.Bool(v), nil
	default:
		return nil, fmt.Errorf("unsupported driver value %T", raw)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
