package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyreports/internal/criteria"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/history"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/rebeliceyang/lazyreports/internal/report"
	"github.com/rebeliceyang/lazyreports/internal/ui/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver counts the lookups that would reach the database
type countingResolver struct {
	*dbutil.MemoryStore
	calls int
}

func (r *countingResolver) SonsOf(ctx context.Context, table string, id int64) ([]int64, error) {
	r.calls++
	return r.MemoryStore.SonsOf(ctx, table, id)
}

func (r *countingResolver) DropdownName(ctx context.Context, table string, id int64) (string, error) {
	r.calls++
	return r.MemoryStore.DropdownName(ctx, table, id)
}

type fixture struct {
	app      *App
	resolver *countingResolver
	group    *criteria.GroupCriteria
	location *criteria.DropdownCriteria
	copied   []string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := dbutil.NewMemoryStore(dbutil.NewNaming(), map[string][]models.LookupItem{
		"glpi_groups": {
			{ID: 1, Name: "IT"},
			{ID: 2, Name: "Support", ParentID: 1},
			{ID: 3, Name: "Accounting"},
		},
		"glpi_locations": {
			{ID: 10, Name: "Paris"},
			{ID: 11, Name: "Lyon"},
		},
	})

	f := &fixture{resolver: &countingResolver{MemoryStore: store}}
	rep, err := report.New("computers", report.Session{Language: "en_GB"}, report.WithResolver(f.resolver))
	require.NoError(t, err)

	f.group = criteria.NewGroupCriteria(rep, "", "", "", false)
	f.location = criteria.NewDropdownCriteria(rep, "locations_id", "", "Location", "", true)
	rep.AddCriteria(f.group, f.location)

	opts = append([]Option{WithClipboard(func(s string) error {
		f.copied = append(f.copied, s)
		return nil
	})}, opts...)
	f.app = New(rep, store, opts...)
	f.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	f.run(f.app.Init())
	return f
}

// run executes cmd and feeds the resulting messages back until none is left
func (f *fixture) run(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = f.app.Update(msg)
	}
}

// press sends keys, running the commands each one returns
func (f *fixture) press(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		_, cmd := f.app.Update(k)
		f.run(cmd)
	}
}

// set selects ids on c outside the form, then refreshes the preview
func (f *fixture) set(c interface{ SetValue(...int64) }, ids ...int64) {
	c.SetValue(ids...)
	f.run(f.app.refresh())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	bksp  = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestApp_PickSingleValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// open the group dropdown, move past the empty row to Accounting, then IT
	f.press(t, enter)
	require.NotNil(t, f.app.picker)
	f.press(t, down, down, enter)
	assert.Nil(t, f.app.picker)

	assert.Equal(t, models.ScalarValue(1), f.group.ParameterValue())
	assert.Equal(t, "AND groups_id='1' ", f.app.Report().SQLRestriction(ctx))

	f.press(t, runes("c"))
	assert.True(t, f.group.WithChildren())
	assert.Equal(t, "AND groups_id IN (1,2) ", f.app.Report().SQLRestriction(ctx))

	f.press(t, bksp)
	assert.False(t, f.group.ParameterValue().IsSet())

	f.press(t, runes("z"))
	assert.True(t, f.group.SearchZero())
}

func TestApp_PickMultipleValues(t *testing.T) {
	f := newFixture(t)

	f.press(t, runes("j"), enter)
	require.NotNil(t, f.app.picker)
	assert.True(t, f.app.picker.Multiple)

	// Lyon sorts before Paris
	f.press(t, space, runes("j"), space, enter)
	assert.Equal(t, models.ListValue(11, 10), f.location.ParameterValue())
	assert.Equal(t, "AND locations_id IN (11,10) ", f.app.Report().SQLRestriction(context.Background()))
}

func TestApp_CancelPicker(t *testing.T) {
	f := newFixture(t)
	f.group.SetValue(3)

	f.press(t, enter, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, f.app.picker)
	assert.Equal(t, models.ScalarValue(3), f.group.ParameterValue())
}

func TestApp_CopyRestrictionRecordsHistory(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := newFixture(t, WithHistory(store))
	f.set(f.group, 2)

	f.press(t, runes("y"))
	assert.Equal(t, []string{"AND groups_id='2' "}, f.copied)
	assert.Equal(t, "Copied restriction to clipboard", f.app.Status())

	entries, err := store.GetRecent(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "computers", entries[0].Report)
	assert.Equal(t, "groups_id=2", entries[0].Query)
	assert.True(t, entries[0].Success)

	f.press(t, runes("u"))
	assert.Equal(t, "groups_id=2", f.copied[1])
}

func TestApp_CopyFailure(t *testing.T) {
	f := newFixture(t, WithClipboard(func(string) error { return errors.New("no display") }))

	f.press(t, runes("y"))
	assert.Contains(t, f.app.Status(), "no display")
	assert.True(t, f.app.failed)
}

func TestApp_LoadError(t *testing.T) {
	f := newFixture(t)
	f.app.Update(ItemsLoadedMsg{Index: 0, Err: errors.New("timeout")})
	assert.Nil(t, f.app.picker)
	assert.Contains(t, f.app.Status(), "timeout")
}

func TestApp_View(t *testing.T) {
	f := newFixture(t)
	f.set(f.group, 2)

	view := f.app.View()
	assert.Contains(t, view, "IT > Support")
	assert.Contains(t, view, "groups_id='2'")
	assert.Contains(t, view, "?groups_id=2")

	f.press(t, runes("?"))
	assert.Contains(t, f.app.View(), "Keyboard Shortcuts")
	f.press(t, runes("?"))
	assert.False(t, f.app.showHelp)

	f.press(t, enter)
	assert.Contains(t, f.app.View(), components.EmptyLabel)
}

func TestApp_ViewDoesNotQueryResolver(t *testing.T) {
	f := newFixture(t)
	f.group.SetWithChildren()
	f.set(f.group, 2)

	calls := f.resolver.calls
	assert.Positive(t, calls)
	for range 10 {
		assert.Contains(t, f.app.View(), "groups_id IN (2)")
	}
	assert.Equal(t, calls, f.resolver.calls)
}

func TestApp_PreviewFollowsEdits(t *testing.T) {
	f := newFixture(t)
	f.set(f.group, 1)
	assert.Contains(t, f.app.View(), "groups_id='1'")

	f.press(t, runes("c"))
	assert.Equal(t, "AND groups_id IN (1,2) ", f.app.preview.restriction)
	assert.Equal(t, []string{"IT"}, f.app.preview.selections[0])
	assert.Equal(t, []string{"Group : IT"}, f.app.preview.subNames)

	f.press(t, bksp)
	assert.Empty(t, f.app.preview.restriction)
	assert.Contains(t, f.app.View(), "(no restriction)")
}

func TestApp_EditsWaitForRefresh(t *testing.T) {
	f := newFixture(t)
	f.group.SetValue(1)
	pending := f.app.refresh()
	assert.Contains(t, f.app.View(), "(no restriction)")

	f.press(t, runes("c"))
	assert.False(t, f.group.WithChildren())
	assert.Equal(t, updatingStatus, f.app.Status())

	f.run(pending)
	assert.Empty(t, f.app.Status())
	assert.Contains(t, f.app.View(), "groups_id='1'")

	f.press(t, runes("c"))
	assert.True(t, f.group.WithChildren())
}

func TestApp_ViewBeforeFirstRefresh(t *testing.T) {
	f := newFixture(t)
	a := New(f.app.Report(), f.resolver)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, a.View(), "(computing...)")
}

func TestFormatStatusBar(t *testing.T) {
	assert.Equal(t, "left  right", formatStatusBar("left", "right", 15))
	assert.Equal(t, "lright", formatStatusBar("left", "right", 10))
}
