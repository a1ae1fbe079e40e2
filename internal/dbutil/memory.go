package dbutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrConditionUnsupported is returned when raw SQL conditions reach a store
// that cannot evaluate them
var ErrConditionUnsupported = errors.New("raw SQL conditions need a database connection")

// MemoryStore serves lookup tables from memory, typically loaded from a YAML
// fixture of the form
//
//	glpi_groups:
//	  - {id: 1, name: IT}
//	  - {id: 2, name: Support, parent: 1}
type MemoryStore struct {
	Naming
	tables map[string][]models.LookupItem
}

// NewMemoryStore creates a store over the given tables
func NewMemoryStore(naming Naming, tables map[string][]models.LookupItem) *MemoryStore {
	if tables == nil {
		tables = map[string][]models.LookupItem{}
	}
	return &MemoryStore{Naming: naming, tables: tables}
}

// LoadMemoryStore reads a YAML fixture
func LoadMemoryStore(path string, naming Naming) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	tables := map[string][]models.LookupItem{}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	return NewMemoryStore(naming, tables), nil
}

// Tables returns the names of the loaded tables
func (s *MemoryStore) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SonsOf returns id and its descendants, sorted
func (s *MemoryStore) SonsOf(_ context.Context, table string, id int64) ([]int64, error) {
	node := models.BuildLookupTree(s.tables[table]).FindByID(id)
	if node == nil {
		return []int64{id}, nil
	}

	ids := node.Descendants()
	slices.Sort(ids)
	return ids, nil
}

// DropdownName returns the hierarchical name of a row, or "(id)" when the
// row does not exist
func (s *MemoryStore) DropdownName(_ context.Context, table string, id int64) (string, error) {
	node := models.BuildLookupTree(s.tables[table]).FindByID(id)
	if node == nil {
		return fmt.Sprintf("(%d)", id), nil
	}
	if node.Item.CompleteName != "" {
		return node.Item.CompleteName, nil
	}
	return node.CompleteName(), nil
}

// ListItems returns the rows visible in the given entity scope, in tree order
func (s *MemoryStore) ListItems(_ context.Context, table string, query models.LookupQuery) ([]models.LookupItem, error) {
	if len(query.Conditions) > 0 {
		return nil, ErrConditionUnsupported
	}

	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table: %s", table)
	}

	visible := make([]models.LookupItem, 0, len(rows))
	for _, row := range rows {
		if query.Entity.Restricted && !row.Recursive && !slices.Contains(query.Entity.IDs, row.EntityID) {
			continue
		}
		visible = append(visible, row)
	}

	return models.BuildLookupTree(visible).Flatten(), nil
}
