package dbutil

import (
	"context"

	"github.com/rebeliceyang/lazyreports/internal/models"
)

// Resolver resolves lookup tables and walks their hierarchies
type Resolver interface {
	TableForForeignKey(field string) string
	TableForItemType(itemType string) string
	ItemTypeForTable(table string) string
	// SonsOf returns id and the ids of all its descendants in table
	SonsOf(ctx context.Context, table string, id int64) ([]int64, error)
	// DropdownName returns the label of row id in table
	DropdownName(ctx context.Context, table string, id int64) (string, error)
}

// ItemLister lists the rows a dropdown offers
type ItemLister interface {
	ListItems(ctx context.Context, table string, query models.LookupQuery) ([]models.LookupItem, error)
}

// EntityTable holds the organisational entity hierarchy
const EntityTable = TablePrefix + "entities"

// EntityScope resolves an entity restriction against the active entity.
// For sub-entities the error of SonsOf is returned with a scope holding the
// active entity alone.
func EntityScope(ctx context.Context, r Resolver, active int64, restriction models.EntityRestriction) (models.EntityScope, error) {
	switch restriction {
	case models.CurrentEntity:
		return models.EntityIDs(active), nil
	case models.SubEntities:
		ids, err := r.SonsOf(ctx, EntityTable, active)
		if err != nil {
			return models.EntityIDs(active), err
		}
		return models.EntityIDs(ids...), nil
	default:
		return models.Unrestricted(), nil
	}
}
