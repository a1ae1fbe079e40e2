package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/history"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/rebeliceyang/lazyreports/internal/report"
	"github.com/rebeliceyang/lazyreports/internal/ui/components"
	"github.com/rebeliceyang/lazyreports/internal/ui/help"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
	"go.uber.org/zap"
)

// Pickable is a criteria the form can edit through a dropdown
type Pickable interface {
	report.Criteria
	Table() string
	Multiple() bool
	DisplayComments() bool
	DropdownOptions() models.DropdownOptions
	ParameterValue() models.Value
	SetValue(ids ...int64)
	WithChildren() bool
	SetWithChildren()
	SetNoChildren()
	SearchZero() bool
	SetSearchZero()
	SetNoSearchZero()
	SelectionNames(ctx context.Context) []string
}

// queryTimeout bounds every resolver or lister call made for the form
const queryTimeout = 10 * time.Second

const updatingStatus = "Updating restriction..."

// App is the criteria form model
type App struct {
	report  *report.Report
	lister  dbutil.ItemLister
	entries []Pickable
	theme   theme.Theme
	logger  *zap.Logger
	history *history.Store
	copy    func(string) error

	width    int
	height   int
	cursor   int
	picker   *components.Picker
	loading  bool
	showHelp bool
	status   string
	failed   bool

	// preview is rendered by View; refreshing is set while a refresh command
	// reads the criteria, and edits wait for it
	preview    preview
	ready      bool
	refreshing bool

	formPanel components.Panel
	sqlPanel  components.Panel
}

// Option configures an App
type Option func(*App)

// WithTheme sets the color theme
func WithTheme(th theme.Theme) Option {
	return func(a *App) { a.theme = th }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithHistory records copied restrictions in store
func WithHistory(store *history.Store) Option {
	return func(a *App) { a.history = store }
}

// WithClipboard replaces the system clipboard
func WithClipboard(fn func(string) error) Option {
	return func(a *App) { a.copy = fn }
}

// ItemsLoadedMsg carries the rows of a dropdown
type ItemsLoadedMsg struct {
	Index int
	Items []models.LookupItem
	Err   error
}

// preview holds what the form shows about the current selection
type preview struct {
	restriction string
	subNames    []string
	// selections are the selected row labels, per entry
	selections [][]string
}

type previewMsg struct {
	preview preview
}

// New creates the form over the editable criteria of rep
func New(rep *report.Report, lister dbutil.ItemLister, opts ...Option) *App {
	a := &App{
		report: rep,
		lister: lister,
		theme:  theme.DefaultTheme(),
		logger: zap.NewNop(),
		copy:   clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, c := range rep.Criterias() {
		if p, ok := c.(Pickable); ok {
			a.entries = append(a.entries, p)
		}
	}

	a.formPanel = components.Panel{Title: rep.Name(), Theme: a.theme, Focused: true}
	a.sqlPanel = components.Panel{Title: "Restriction", Theme: a.theme}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.refresh()
}

// refresh recomputes the preview. The resolver may hit the database, so
// this runs as a command and the result comes back as a previewMsg.
func (a *App) refresh() tea.Cmd {
	a.refreshing = true
	rep := a.report
	entries := a.entries

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		p := preview{
			restriction: rep.SQLRestriction(ctx),
			subNames:    rep.SubNames(ctx),
			selections:  make([][]string, len(entries)),
		}
		for i, c := range entries {
			p.selections[i] = c.SelectionNames(ctx)
		}
		return previewMsg{preview: p}
	}
}

// Report returns the report edited by the form
func (a *App) Report() *report.Report {
	return a.report
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updatePanelDimensions()
		return a, nil

	case previewMsg:
		a.preview = msg.preview
		a.ready = true
		a.refreshing = false
		if a.status == updatingStatus {
			a.setStatus("", false)
		}
		return a, nil

	case ItemsLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			a.setStatus(fmt.Sprintf("Failed to load rows: %v", msg.Err), true)
			return a, nil
		}
		a.openPicker(msg.Index, msg.Items)
		return a, nil

	case components.PickerConfirmedMsg:
		a.picker = nil
		if c := a.current(); c != nil {
			c.SetValue(msg.IDs...)
			a.setStatus("", false)
			return a, a.refresh()
		}
		return a, nil

	case components.PickerCancelledMsg:
		a.picker = nil
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.picker != nil {
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Update(msg)
			return a, cmd
		}
		if a.showHelp {
			switch msg.String() {
			case "?", "esc", "q":
				a.showHelp = false
			}
			return a, nil
		}
		return a.handleFormKey(msg)
	}

	if a.picker != nil {
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.current()

	switch msg.String() {
	case "enter", " ", "c", "z", "backspace", "delete", "y":
		if a.refreshing {
			a.setStatus(updatingStatus, false)
			return a, nil
		}
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j", "tab":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		if c != nil && !a.loading {
			a.loading = true
			return a, a.loadItems(a.cursor)
		}
	case "c":
		if c != nil {
			if c.WithChildren() {
				c.SetNoChildren()
			} else {
				c.SetWithChildren()
			}
			return a, a.refresh()
		}
	case "z":
		if c != nil {
			if c.SearchZero() {
				c.SetNoSearchZero()
			} else {
				c.SetSearchZero()
			}
			return a, a.refresh()
		}
	case "backspace", "delete":
		if c != nil {
			c.SetValue()
			return a, a.refresh()
		}
	case "y":
		a.copyRestriction()
	case "u":
		a.copyText(a.report.BookmarkURL(), "bookmark query")
	}
	return a, nil
}

func (a *App) current() Pickable {
	if a.cursor < 0 || a.cursor >= len(a.entries) {
		return nil
	}
	return a.entries[a.cursor]
}

// loadItems fetches the dropdown rows of entry i
func (a *App) loadItems(i int) tea.Cmd {
	c := a.entries[i]
	opts := c.DropdownOptions()
	table := c.Table()
	lister := a.lister

	return func() tea.Msg {
		if lister == nil || table == "" || table == dbutil.NotAvailable {
			return ItemsLoadedMsg{Index: i}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		items, err := lister.ListItems(ctx, table, models.LookupQuery{
			Entity:     opts.Entity,
			Conditions: opts.Condition,
		})
		return ItemsLoadedMsg{Index: i, Items: items, Err: err}
	}
}

func (a *App) openPicker(i int, items []models.LookupItem) {
	if i < 0 || i >= len(a.entries) {
		return
	}
	a.cursor = i
	c := a.entries[i]

	p := components.NewPicker(c.Name(), c.Label(), items, c.Multiple(), a.theme)
	p.Comments = c.DisplayComments()
	p.SetSelected(c.ParameterValue().IDs())
	p.Width = max(a.formPanel.Width, 30)
	p.Height = max(a.formPanel.Height, 8)
	a.picker = p
}

func (a *App) copyRestriction() {
	restriction := a.preview.restriction
	err := a.copy(restriction)

	if a.history != nil {
		entry := history.Entry{
			Report:      a.report.Name(),
			Query:       a.report.BookmarkURL(),
			Restriction: restriction,
			Success:     err == nil,
		}
		if err != nil {
			entry.ErrorMessage = err.Error()
		}
		if herr := a.history.Add(entry); herr != nil {
			a.logger.Warn("failed to record history", zap.Error(herr))
		}
	}

	a.reportCopy(err, "restriction")
}

func (a *App) copyText(text, what string) {
	a.reportCopy(a.copy(text), what)
}

func (a *App) reportCopy(err error, what string) {
	if err != nil {
		a.logger.Warn("clipboard copy failed", zap.Error(err))
		a.setStatus(fmt.Sprintf("Could not copy %s: %v", what, err), true)
		return
	}
	a.setStatus(fmt.Sprintf("Copied %s to clipboard", what), false)
}

func (a *App) setStatus(s string, failed bool) {
	a.status = s
	a.failed = failed
}

// Status returns the last status line message
func (a *App) Status() string {
	return a.status
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	if a.showHelp {
		return help.Render(a.width, a.height, a.theme)
	}
	if a.picker != nil {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.picker.View())
	}

	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(formatStatusBar("lazyreports", a.report.Name(), a.width))

	a.formPanel.Content = a.renderForm()
	a.sqlPanel.Content = a.renderRestriction()

	panels := lipgloss.JoinHorizontal(lipgloss.Top, a.formPanel.View(), a.sqlPanel.View())

	bottomLeft := "[enter] Pick | [c] Children | [z] Zero | [y] Copy SQL | [?] Help | [q] Quit"
	bottomStyle := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2)
	if a.status != "" {
		bottomLeft = a.status
		if a.failed {
			bottomStyle = bottomStyle.Foreground(a.theme.Error)
		} else {
			bottomStyle = bottomStyle.Foreground(a.theme.Success)
		}
	}
	if a.loading {
		bottomLeft = "Loading rows..."
	}
	bottomBar := bottomStyle.Render(formatStatusBar(bottomLeft, "", a.width))

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panels, bottomBar)
}

func (a *App) renderForm() string {
	if len(a.entries) == 0 {
		return lipgloss.NewStyle().Foreground(a.theme.Muted).Italic(true).Render("No criteria")
	}

	labelWidth := 0
	for _, c := range a.entries {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label()))
	}

	flagStyle := lipgloss.NewStyle().Foreground(a.theme.Muted)
	var lines []string
	for i, c := range a.entries {
		value := flagStyle.Render(components.EmptyLabel)
		if i < len(a.preview.selections) && len(a.preview.selections[i]) > 0 {
			value = strings.Join(a.preview.selections[i], ", ")
		}

		var flags []string
		if c.Multiple() {
			flags = append(flags, "multi")
		}
		if c.WithChildren() {
			flags = append(flags, "children")
		}
		if c.SearchZero() {
			flags = append(flags, "zero")
		}

		line := fmt.Sprintf("%-*s : %s", labelWidth, c.Label(), value)
		if len(flags) > 0 {
			line += " " + flagStyle.Render("["+strings.Join(flags, ",")+"]")
		}

		if i == a.cursor {
			lines = append(lines, lipgloss.NewStyle().Background(a.theme.Selection).Bold(true).Render("› "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRestriction() string {
	keyword := lipgloss.NewStyle().Foreground(a.theme.Keyword).Bold(true)
	muted := lipgloss.NewStyle().Foreground(a.theme.Muted)

	var b strings.Builder
	b.WriteString(keyword.Render("WHERE") + " 1=1\n")

	restriction := strings.TrimSpace(a.preview.restriction)
	switch {
	case !a.ready:
		b.WriteString(muted.Render("(computing...)"))
	case restriction == "":
		b.WriteString(muted.Render("(no restriction)"))
	default:
		for _, part := range strings.SplitAfter(restriction, " ") {
			if strings.TrimSpace(part) == "AND" {
				b.WriteString("\n" + keyword.Render("AND") + " ")
				continue
			}
			b.WriteString(part)
		}
	}

	if subs := a.preview.subNames; len(subs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(muted.Render(strings.Join(subs, "\n")))
	}
	if url := a.report.BookmarkURL(); url != "" {
		b.WriteString("\n\n")
		b.WriteString(muted.Render("?" + url))
	}
	return b.String()
}

// updatePanelDimensions splits the window between the form and the SQL
// preview, keeping one line each for the top and bottom bars
func (a *App) updatePanelDimensions() {
	if a.width <= 0 || a.height <= 0 {
		return
	}

	contentHeight := max(a.height-4, 5)
	leftWidth := max(a.width*55/100, 20)
	rightWidth := a.width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = max(a.width-rightWidth-4, 20)
	}

	a.formPanel.Width = leftWidth
	a.formPanel.Height = contentHeight
	a.sqlPanel.Width = rightWidth
	a.sqlPanel.Height = contentHeight
}

// formatStatusBar aligns left and right within width minus padding
func formatStatusBar(left, right string, width int) string {
	available := max(width-4, 0)
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > available {
		runes := []rune(left)
		keep := max(available-rightLen, 0)
		if keep < len(runes) {
			runes = runes[:keep]
		}
		return string(runes) + right
	}

	return left + strings.Repeat(" ", available-leftLen-rightLen) + right
}
