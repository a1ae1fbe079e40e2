package components

// Picker is the terminal counterpart of the HTML dropdown: a scrollable list
// of lookup rows indented by tree level, with single or multiple selection
// and an incremental filter.
//
// Keys: ↑↓/jk move, g/G jump, space toggles (multiple), enter confirms,
// / filters, esc cancels.

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
)

// EmptyLabel is the row standing for "no selection" in single-select pickers
const EmptyLabel = "-----"

// PickerConfirmedMsg is sent when the selection is confirmed
type PickerConfirmedMsg struct {
	Name string
	IDs  []int64
}

// PickerCancelledMsg is sent when the picker is closed without a choice
type PickerCancelledMsg struct {
	Name string
}

// Picker selects rows of one lookup table
type Picker struct {
	Name     string
	Title    string
	Items    []models.LookupItem
	Multiple bool
	Comments bool
	Width    int
	Height   int
	Theme    theme.Theme

	cursor    int
	scroll    int
	selected  map[int64]bool
	filter    textinput.Model
	filtering bool
}

// NewPicker creates a picker over items in display order
func NewPicker(name, title string, items []models.LookupItem, multiple bool, th theme.Theme) *Picker {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 64
	ti.Prompt = "/ "
	ti.Cursor.SetMode(cursor.CursorStatic)

	if !multiple {
		items = append([]models.LookupItem{{Name: EmptyLabel}}, items...)
	}

	return &Picker{
		Name:     name,
		Title:    title,
		Items:    items,
		Multiple: multiple,
		Width:    40,
		Height:   20,
		Theme:    th,
		selected: map[int64]bool{},
		filter:   ti,
	}
}

// SetSelected marks ids as selected and moves the cursor to the first one
func (p *Picker) SetSelected(ids []int64) {
	p.selected = map[int64]bool{}
	for _, id := range ids {
		if id != 0 {
			p.selected[id] = true
		}
	}
	for i, item := range p.Visible() {
		if p.selected[item.ID] {
			p.cursor = i
			return
		}
	}
}

// Selected returns the selected ids in display order
func (p *Picker) Selected() []int64 {
	ids := []int64{}
	for _, item := range p.Items {
		if item.ID != 0 && p.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Filter returns the current filter text
func (p *Picker) Filter() string {
	return p.filter.Value()
}

// Cursor returns the highlighted row, nil when nothing is visible
func (p *Picker) Cursor() *models.LookupItem {
	visible := p.Visible()
	if p.cursor < 0 || p.cursor >= len(visible) {
		return nil
	}
	item := visible[p.cursor]
	return &item
}

// Visible returns the rows matching the filter. The empty row is only
// offered while no filter is typed.
func (p *Picker) Visible() []models.LookupItem {
	query := strings.ToLower(strings.TrimSpace(p.filter.Value()))
	if query == "" {
		return p.Items
	}

	var result []models.LookupItem
	for _, item := range p.Items {
		if item.ID == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(item.DisplayName()), query) {
			result = append(result, item)
		}
	}
	return result
}

// Update handles key messages
func (p *Picker) Update(msg tea.Msg) (*Picker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.filtering {
			var cmd tea.Cmd
			p.filter, cmd = p.filter.Update(msg)
			return p, cmd
		}
		return p, nil
	}

	if p.filtering {
		switch key.String() {
		case "esc":
			p.filtering = false
			p.filter.Blur()
			p.filter.SetValue("")
			p.clampCursor()
			return p, nil
		case "enter":
			p.filtering = false
			p.filter.Blur()
			return p, nil
		}
		var cmd tea.Cmd
		p.filter, cmd = p.filter.Update(msg)
		p.cursor = 0
		p.scroll = 0
		return p, cmd
	}

	switch key.String() {
	case "up", "k":
		p.move(-1)
	case "down", "j":
		p.move(1)
	case "pgup", "ctrl+u":
		p.move(-p.pageSize())
	case "pgdown", "ctrl+d":
		p.move(p.pageSize())
	case "g", "home":
		p.cursor = 0
	case "G", "end":
		p.cursor = len(p.Visible()) - 1
		p.clampCursor()
	case " ", "x":
		if p.Multiple {
			p.toggle()
		}
	case "/":
		p.filtering = true
		return p, p.filter.Focus()
	case "enter":
		return p, p.confirm()
	case "esc", "q":
		name := p.Name
		return p, func() tea.Msg { return PickerCancelledMsg{Name: name} }
	}
	return p, nil
}

func (p *Picker) confirm() tea.Cmd {
	name := p.Name
	if p.Multiple {
		ids := p.Selected()
		return func() tea.Msg { return PickerConfirmedMsg{Name: name, IDs: ids} }
	}

	item := p.Cursor()
	if item == nil {
		return nil
	}
	ids := []int64{item.ID}
	return func() tea.Msg { return PickerConfirmedMsg{Name: name, IDs: ids} }
}

func (p *Picker) toggle() {
	item := p.Cursor()
	if item == nil || item.ID == 0 {
		return
	}
	if p.selected[item.ID] {
		delete(p.selected, item.ID)
	} else {
		p.selected[item.ID] = true
	}
}

func (p *Picker) move(delta int) {
	p.cursor += delta
	p.clampCursor()
}

func (p *Picker) clampCursor() {
	n := len(p.Visible())
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// pageSize is the number of rows shown: height minus borders, title and
// filter line
func (p *Picker) pageSize() int {
	return max(p.Height-4, 1)
}

func (p *Picker) adjustScroll(total int) {
	size := p.pageSize()
	if p.cursor < p.scroll {
		p.scroll = p.cursor
	}
	if p.cursor >= p.scroll+size {
		p.scroll = p.cursor - size + 1
	}
	p.scroll = min(p.scroll, max(total-size, 0))
	p.scroll = max(p.scroll, 0)
}

// View renders the picker
func (p *Picker) View() string {
	visible := p.Visible()
	p.clampCursor()
	p.adjustScroll(len(visible))

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Theme.Info)
	mutedStyle := lipgloss.NewStyle().Foreground(p.Theme.Muted)

	var lines []string
	title := p.Title
	if p.Multiple {
		title += mutedStyle.Render(fmt.Sprintf(" (%d selected)", len(p.Selected())))
	}
	lines = append(lines, titleStyle.Render(title))

	if p.filtering || p.filter.Value() != "" {
		lines = append(lines, p.filter.View())
	} else {
		lines = append(lines, mutedStyle.Render("/ filter  space toggle  enter confirm  esc cancel"))
	}

	if len(visible) == 0 {
		lines = append(lines, mutedStyle.Italic(true).Render("No matching rows"))
	}

	end := min(p.scroll+p.pageSize(), len(visible))
	for i := p.scroll; i < end; i++ {
		lines = append(lines, p.renderItem(visible[i], i == p.cursor))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.BorderFocused).
		Padding(0, 1).
		Width(p.Width).
		Render(strings.Join(lines, "\n"))
}

func (p *Picker) renderItem(item models.LookupItem, current bool) string {
	var b strings.Builder

	if p.Multiple {
		if p.selected[item.ID] {
			b.WriteString(lipgloss.NewStyle().Foreground(p.Theme.Checked).Render("[x] "))
		} else {
			b.WriteString("[ ] ")
		}
	}

	// Indent children under their parent, as the web dropdown does
	b.WriteString(strings.Repeat("  ", item.Level))
	b.WriteString(item.Name)

	if p.Comments && item.Comment != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(p.Theme.Muted).Render(" - " + item.Comment))
	}

	style := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	if current {
		style = style.Background(p.Theme.Selection).Bold(true)
		return style.Render("› " + b.String())
	}
	if !p.Multiple && slices.Contains(p.Selected(), item.ID) {
		style = style.Foreground(p.Theme.Checked)
	}
	return style.Render("  " + b.String())
}
