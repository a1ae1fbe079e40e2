package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Querier runs a query and returns each row as a column -> value map.
// connection.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error)
}

// Table represents a lookup table of the schema
type Table struct {
	Schema   string
	Name     string
	ItemType string
	Size     string
}

// ListTables returns the tables of the schema carrying the given prefix
func ListTables(ctx context.Context, db Querier, schema, prefix string) ([]Table, error) {
	query := `
		SELECT
			schemaname as schema,
			tablename as name,
			pg_catalog.pg_size_pretty(pg_catalog.pg_total_relation_size(quote_ident(schemaname)||'.'||quote_ident(tablename))) as size
		FROM pg_catalog.pg_tables
		WHERE schemaname = $1 AND tablename LIKE $2
		ORDER BY tablename;
	`

	rows, err := db.Query(ctx, query, schema, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, Table{
			Schema: cast.ToString(row["schema"]),
			Name:   cast.ToString(row["name"]),
			Size:   cast.ToString(row["size"]),
		})
	}

	return tables, nil
}

// TableColumns returns the column names of a table, empty when the table
// does not exist
func TableColumns(ctx context.Context, db Querier, schema, table string) (map[string]bool, error) {
	query := `
		SELECT column_name as name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position;
	`

	rows, err := db.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", table, err)
	}

	columns := make(map[string]bool, len(rows))
	for _, row := range rows {
		columns[cast.ToString(row["name"])] = true
	}
	return columns, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
