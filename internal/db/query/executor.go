package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/lazyreports/internal/models"
)

// DefaultLimit caps the rows fetched by a report preview
const DefaultLimit = 200

// ReportQuery describes the listing a report runs against one table
type ReportQuery struct {
	Table   string
	Columns []string
	Where   sq.Sqlizer
	OrderBy string
	Limit   uint64
}

// Build renders the query with PostgreSQL placeholders
func (q ReportQuery) Build() (string, []interface{}, error) {
	if q.Table == "" {
		return "", nil, fmt.Errorf("report query needs a table")
	}

	columns := q.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	builder := sq.Select(columns...).
		From(pgx.Identifier{q.Table}.Sanitize()).
		PlaceholderFormat(sq.Dollar)
	if q.Where != nil {
		builder = builder.Where(q.Where)
	}
	if q.OrderBy != "" {
		builder = builder.OrderBy(q.OrderBy)
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	return builder.Limit(limit).ToSql()
}

// Execute executes a SQL query and returns the results
func Execute(ctx context.Context, pool *pgxpool.Pool, sql string, args ...interface{}) models.QueryResult {
	start := time.Now()

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	var result [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.QueryResult{
				Error:    err,
				Duration: time.Since(start),
			}
		}

		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return models.QueryResult{
		Columns:      columns,
		Rows:         result,
		RowsAffected: int64(len(result)),
		Duration:     time.Since(start),
	}
}

// FormatValue converts a database value to its display string
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case map[string]interface{}, []interface{}:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprintf("%v", val)
	}
}
