package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section groups key bindings under a heading
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit and print the restriction"},
		{"y", "Copy the SQL restriction"},
		{"u", "Copy the bookmark query string"},
	}
}

// GetFormKeys returns criteria form key bindings
func GetFormKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Previous criteria"},
		{"↓/j", "Next criteria"},
		{"Enter", "Open the dropdown"},
		{"c", "Toggle children inclusion"},
		{"z", "Toggle search on zero"},
		{"Backspace", "Clear the selection"},
	}
}

// GetPickerKeys returns dropdown key bindings
func GetPickerKeys() []KeyBinding {
	return []KeyBinding{
		{"↑↓/jk", "Move"},
		{"g/G", "First/last row"},
		{"Space", "Toggle row (multiple selection)"},
		{"/", "Filter rows"},
		{"Enter", "Confirm"},
		{"Esc", "Cancel"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Criteria form", GetFormKeys()},
		{"Dropdown", GetPickerKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyreports - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 10))

	return boxStyle.Render(b.String())
}
