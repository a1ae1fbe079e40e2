package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []models.LookupItem {
	root := models.BuildLookupTree([]models.LookupItem{
		{ID: 1, Name: "IT"},
		{ID: 2, Name: "Support", ParentID: 1, Comment: "hotline"},
		{ID: 3, Name: "Accounting"},
	})
	return root.Flatten()
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, p *Picker, keys ...string) tea.Msg {
	t.Helper()
	var msg tea.Msg
	for _, k := range keys {
		var cmd tea.Cmd
		p, cmd = p.Update(key(k))
		msg = nil
		if cmd != nil {
			msg = cmd()
		}
	}
	return msg
}

func TestPicker_SingleSelect(t *testing.T) {
	p := NewPicker("groups_id", "Group", testItems(), false, theme.DefaultTheme())

	visible := p.Visible()
	require.Len(t, visible, 4)
	assert.Equal(t, EmptyLabel, visible[0].Name)
	assert.Equal(t, "Accounting", visible[1].Name)

	msg := send(t, p, "down", "down", "enter")
	confirmed, ok := msg.(PickerConfirmedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "groups_id", confirmed.Name)
	assert.Equal(t, []int64{1}, confirmed.IDs)

	msg = send(t, p, "g", "enter")
	assert.Equal(t, PickerConfirmedMsg{Name: "groups_id", IDs: []int64{0}}, msg)
}

func TestPicker_MultiSelect(t *testing.T) {
	p := NewPicker("groups_id[]", "Group", testItems(), true, theme.DefaultTheme())
	p.SetSelected([]int64{2})

	require.NotNil(t, p.Cursor())
	assert.Equal(t, int64(2), p.Cursor().ID, "cursor starts on the first selected row")

	send(t, p, " ")
	assert.Empty(t, p.Selected())

	msg := send(t, p, "g", " ", "j", "j", " ", "enter")
	assert.Equal(t, PickerConfirmedMsg{Name: "groups_id[]", IDs: []int64{3, 2}}, msg)
}

func TestPicker_Filter(t *testing.T) {
	p := NewPicker("groups_id", "Group", testItems(), false, theme.DefaultTheme())

	send(t, p, "/", "sup")
	assert.Equal(t, "sup", p.Filter())
	visible := p.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Support", visible[0].Name)

	// enter leaves filter mode, a second enter confirms
	msg := send(t, p, "enter", "enter")
	assert.Equal(t, PickerConfirmedMsg{Name: "groups_id", IDs: []int64{2}}, msg)

	send(t, p, "/", "esc")
	assert.Empty(t, p.Filter())
	assert.Len(t, p.Visible(), 4)
}

func TestPicker_Cancel(t *testing.T) {
	p := NewPicker("groups_id", "Group", testItems(), false, theme.DefaultTheme())
	assert.Equal(t, PickerCancelledMsg{Name: "groups_id"}, send(t, p, "esc"))
}

func TestPicker_View(t *testing.T) {
	p := NewPicker("groups_id[]", "Group", testItems(), true, theme.DefaultTheme())
	p.Comments = true
	p.Width = 60
	p.SetSelected([]int64{2})

	view := p.View()
	assert.Contains(t, view, "(1 selected)")
	assert.Contains(t, view, "Support - hotline")
	assert.True(t, strings.Contains(view, "  Support"), "children are indented")
}

func TestPicker_Scroll(t *testing.T) {
	var items []models.LookupItem
	for i := int64(1); i <= 30; i++ {
		items = append(items, models.LookupItem{ID: i, Name: strings.Repeat("x", int(i))})
	}
	p := NewPicker("groups_id", "Group", items, true, theme.DefaultTheme())
	p.Height = 8

	send(t, p, "G")
	p.View()
	assert.Equal(t, 29, p.cursor)
	assert.Equal(t, 26, p.scroll)

	send(t, p, "g")
	p.View()
	assert.Equal(t, 0, p.scroll)
}
