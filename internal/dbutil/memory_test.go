package dbutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
glpi_groups:
  - {id: 1, name: IT, entity: 0, recursive: true}
  - {id: 2, name: Support, parent: 1, entity: 0}
  - {id: 3, name: Network, parent: 1, entity: 1}
  - {id: 4, name: Level 2, parent: 2, entity: 1}
glpi_entities:
  - {id: 1, name: Branch, parent: 0}
  - {id: 2, name: Shop, parent: 1}
`

func loadFixture(t *testing.T) *MemoryStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))

	store, err := LoadMemoryStore(path, NewNaming())
	require.NoError(t, err)
	return store
}

func TestMemoryStore_SonsOf(t *testing.T) {
	store := loadFixture(t)
	ctx := context.Background()

	ids, err := store.SonsOf(ctx, "glpi_groups", 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	ids, err = store.SonsOf(ctx, "glpi_groups", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, ids)

	ids, err = store.SonsOf(ctx, "glpi_groups", 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)
}

func TestMemoryStore_DropdownName(t *testing.T) {
	store := loadFixture(t)
	ctx := context.Background()

	name, err := store.DropdownName(ctx, "glpi_groups", 4)
	require.NoError(t, err)
	assert.Equal(t, "IT > Support > Level 2", name)

	name, err = store.DropdownName(ctx, "glpi_groups", 9)
	require.NoError(t, err)
	assert.Equal(t, "(9)", name)
}

func TestMemoryStore_ListItems(t *testing.T) {
	store := loadFixture(t)
	ctx := context.Background()

	all, err := store.ListItems(ctx, "glpi_groups", models.LookupQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	scoped, err := store.ListItems(ctx, "glpi_groups", models.LookupQuery{Entity: models.EntityIDs(0)})
	require.NoError(t, err)
	var ids []int64
	for _, item := range scoped {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)

	_, err = store.ListItems(ctx, "glpi_groups", models.LookupQuery{Conditions: []string{"is_assign = 1"}})
	assert.ErrorIs(t, err, ErrConditionUnsupported)

	_, err = store.ListItems(ctx, "glpi_nothing", models.LookupQuery{})
	assert.Error(t, err)
}

func TestMemoryStore_Tables(t *testing.T) {
	store := loadFixture(t)
	assert.Equal(t, []string{"glpi_entities", "glpi_groups"}, store.Tables())
}

type brokenResolver struct{ *MemoryStore }

func (brokenResolver) SonsOf(context.Context, string, int64) ([]int64, error) {
	return nil, assert.AnError
}

func TestEntityScope(t *testing.T) {
	store := loadFixture(t)
	ctx := context.Background()

	scope, err := EntityScope(ctx, store, 1, models.NoEntityRestriction)
	require.NoError(t, err)
	assert.False(t, scope.Restricted)

	scope, err = EntityScope(ctx, store, 1, models.CurrentEntity)
	require.NoError(t, err)
	assert.Equal(t, models.EntityIDs(1), scope)

	scope, err = EntityScope(ctx, store, 1, models.SubEntities)
	require.NoError(t, err)
	assert.Equal(t, models.EntityIDs(1, 2), scope)

	scope, err = EntityScope(ctx, brokenResolver{store}, 1, models.SubEntities)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, models.EntityIDs(1), scope)
}
