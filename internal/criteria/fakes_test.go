package criteria

import (
	"context"
	"errors"
	"io"

	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/locale"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"go.uber.org/zap"
)

type fakeReport struct {
	entity     int64
	resolver   dbutil.Resolver
	renderer   DropdownRenderer
	translator Translator
}

func (r *fakeReport) ActiveEntity() int64        { return r.entity }
func (r *fakeReport) Resolver() dbutil.Resolver  { return r.resolver }
func (r *fakeReport) Renderer() DropdownRenderer { return r.renderer }
func (r *fakeReport) Translator() Translator     { return r.translator }
func (r *fakeReport) Logger() *zap.Logger        { return zap.NewNop() }
func (r *fakeReport) StartColumn(w io.Writer) error {
	_, err := io.WriteString(w, "<td>")
	return err
}
func (r *fakeReport) EndColumn(w io.Writer) error {
	_, err := io.WriteString(w, "</td>")
	return err
}

type renderCall struct {
	itemType string
	table    string
	opts     models.DropdownOptions
}

type fakeRenderer struct {
	calls []renderCall
}

func (f *fakeRenderer) RenderDropdown(_ context.Context, w io.Writer, itemType, table string, opts models.DropdownOptions) error {
	f.calls = append(f.calls, renderCall{itemType: itemType, table: table, opts: opts})
	_, err := io.WriteString(w, "<select name=\""+opts.Name+"\"></select>")
	return err
}

// failingResolver cannot walk hierarchies
type failingResolver struct {
	dbutil.Naming
}

var errDatabaseDown = errors.New("database down")

func (failingResolver) SonsOf(context.Context, string, int64) ([]int64, error) {
	return nil, errDatabaseDown
}

func (failingResolver) DropdownName(context.Context, string, int64) (string, error) {
	return "", errDatabaseDown
}

func testStore() *dbutil.MemoryStore {
	return dbutil.NewMemoryStore(dbutil.NewNaming(), map[string][]models.LookupItem{
		"glpi_groups": {
			{ID: 1, Name: "IT"},
			{ID: 2, Name: "Support", ParentID: 1},
			{ID: 3, Name: "Network", ParentID: 1},
			{ID: 4, Name: "Level 2", ParentID: 2},
			{ID: 5, Name: "Accounting"},
		},
		"glpi_entities": {
			{ID: 1, Name: "Root entity"},
			{ID: 2, Name: "Branch", ParentID: 1},
			{ID: 3, Name: "Shop", ParentID: 2},
		},
	})
}

func newTestReport() *fakeReport {
	c, err := locale.Load()
	if err != nil {
		panic(err)
	}
	return &fakeReport{
		entity:     1,
		resolver:   testStore(),
		renderer:   &fakeRenderer{},
		translator: c.Translator("en_GB"),
	}
}
