// Package db holds the typed queries against the clinical operations
// schema. Every statement is qualified with the schema the Queries value
// was built for.
package db

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed sql/schema.sql
var schemaSQL string

var schemaTmpl = template.Must(template.New("schema").Parse(schemaSQL))

// DefaultSchema is used when no schema name is configured.
const DefaultSchema = "digital_health"

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

func New(db DBTX, schema string) *Queries {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Queries{db: db, schema: schema}
}

type Queries struct {
	db     DBTX
	schema string
}

// Schema returns the unquoted schema name.
func (q *Queries) Schema() string {
	return q.schema
}

// table returns the sanitized, schema-qualified name of t.
func (q *Queries) table(t string) string {
	return pgx.Identifier{q.schema, t}.Sanitize()
}

// SchemaSQL renders the DDL for schema.
func SchemaSQL(schema string) (string, error) {
	if schema == "" {
		schema = DefaultSchema
	}
	var buf bytes.Buffer
	err := schemaTmpl.Execute(&buf, struct{ Schema string }{pgx.Identifier{schema}.Sanitize()})
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return buf.String(), nil
}

// InitSchema creates the schema, tables and views if they do not exist.
func (q *Queries) InitSchema(ctx context.Context) error {
	ddl, err := SchemaSQL(q.schema)
	if err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("init schema %s: %w", q.schema, err)
	}
	return nil
}
