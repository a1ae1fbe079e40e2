package metadata

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/spf13/cast"
)

// DefaultSchema is where the lookup tables live
const DefaultSchema = "public"

// LookupStore resolves lookup rows from PostgreSQL. It implements
// dbutil.Resolver and dbutil.ItemLister.
type LookupStore struct {
	dbutil.Naming
	db     Querier
	schema string
}

// NewLookupStore creates a store reading from db
func NewLookupStore(db Querier, naming dbutil.Naming) *LookupStore {
	return &LookupStore{Naming: naming, db: db, schema: DefaultSchema}
}

// WithSchema returns a copy of the store reading from another schema
func (s *LookupStore) WithSchema(schema string) *LookupStore {
	c := *s
	c.schema = schema
	return &c
}

// Tables lists the lookup tables with their item type
func (s *LookupStore) Tables(ctx context.Context) ([]Table, error) {
	tables, err := ListTables(ctx, s.db, s.schema, dbutil.TablePrefix)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].ItemType = s.ItemTypeForTable(tables[i].Name)
	}
	return tables, nil
}

// TableExists reports whether table exists in the schema
func (s *LookupStore) TableExists(ctx context.Context, table string) (bool, error) {
	columns, err := TableColumns(ctx, s.db, s.schema, table)
	if err != nil {
		return false, err
	}
	return len(columns) > 0, nil
}

// HasColumn reports whether table carries column
func (s *LookupStore) HasColumn(ctx context.Context, table, column string) (bool, error) {
	columns, err := TableColumns(ctx, s.db, s.schema, table)
	if err != nil {
		return false, err
	}
	return columns[column], nil
}

// SonsOf returns id and all its descendants, sorted. Tables without a
// parent column yield id alone.
func (s *LookupStore) SonsOf(ctx context.Context, table string, id int64) ([]int64, error) {
	columns, err := TableColumns(ctx, s.db, s.schema, table)
	if err != nil {
		return nil, err
	}

	parent := s.ForeignKeyForTable(table)
	if !columns[parent] {
		return []int64{id}, nil
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE sons AS (
			SELECT id FROM %[1]s WHERE id = $1
			UNION
			SELECT c.id FROM %[1]s c JOIN sons s ON c.%[2]s = s.id
		)
		SELECT id FROM sons ORDER BY id;
	`, s.ident(table), pgx.Identifier{parent}.Sanitize())

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sons of %s %d: %w", table, id, err)
	}

	ids := make([]int64, 0, len(rows)+1)
	for _, row := range rows {
		son, err := cast.ToInt64E(row["id"])
		if err != nil {
			return nil, fmt.Errorf("invalid id in %s: %w", table, err)
		}
		ids = append(ids, son)
	}
	if !slices.Contains(ids, id) {
		ids = append(ids, id)
		slices.Sort(ids)
	}
	return ids, nil
}

// DropdownName returns completename when the table has one, else name.
// A missing row yields "(id)".
func (s *LookupStore) DropdownName(ctx context.Context, table string, id int64) (string, error) {
	columns, err := TableColumns(ctx, s.db, s.schema, table)
	if err != nil {
		return "", err
	}

	nameColumn := "name"
	if columns["completename"] {
		nameColumn = "completename"
	}

	query, args, err := sq.Select(nameColumn + " AS name").
		From(s.ident(table)).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get name of %s %d: %w", table, id, err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("(%d)", id), nil
	}
	return cast.ToString(rows[0]["name"]), nil
}

// ListItems returns the rows offered by a dropdown, in tree order.
// Rows of other entities are kept when they are recursive.
func (s *LookupStore) ListItems(ctx context.Context, table string, query models.LookupQuery) ([]models.LookupItem, error) {
	columns, err := TableColumns(ctx, s.db, s.schema, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("unknown table %s", table)
	}

	fields := []string{"id", "name"}
	for _, column := range []string{"completename", "comment", "entities_id", "is_recursive"} {
		if columns[column] {
			fields = append(fields, column)
		}
	}
	parent := s.ForeignKeyForTable(table)
	if columns[parent] {
		fields = append(fields, pgx.Identifier{parent}.Sanitize()+" AS parent")
	}

	builder := sq.Select(fields...).
		From(s.ident(table)).
		OrderBy("name").
		PlaceholderFormat(sq.Dollar)

	if query.Entity.Restricted && columns["entities_id"] {
		var scope sq.Sqlizer = sq.Eq{"entities_id": query.Entity.IDs}
		if columns["is_recursive"] {
			scope = sq.Or{scope, sq.Expr("CAST(is_recursive AS integer) = 1")}
		}
		builder = builder.Where(scope)
	}
	for _, condition := range query.Conditions {
		builder = builder.Where(condition)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}

	items := make([]models.LookupItem, 0, len(rows))
	for _, row := range rows {
		id, err := cast.ToInt64E(row["id"])
		if err != nil {
			return nil, fmt.Errorf("invalid id in %s: %w", table, err)
		}
		items = append(items, models.LookupItem{
			ID:           id,
			Name:         cast.ToString(row["name"]),
			CompleteName: cast.ToString(row["completename"]),
			Comment:      cast.ToString(row["comment"]),
			ParentID:     cast.ToInt64(row["parent"]),
			EntityID:     cast.ToInt64(row["entities_id"]),
			Recursive:    cast.ToBool(row["is_recursive"]),
		})
	}

	return models.BuildLookupTree(items).Flatten(), nil
}

func (s *LookupStore) ident(table string) string {
	return pgx.Identifier{s.schema, table}.Sanitize()
}
