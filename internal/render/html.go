// Package render draws criteria dropdowns as HTML select controls.
package render

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/models"
)

// EmptyLabel is shown for the "nothing selected" option
const EmptyLabel = "-----"

var selectTemplate = template.Must(template.New("select").Parse(
	`<select name="{{.Name}}" id="{{.ID}}"{{if .Multiple}} multiple{{end}}{{if .Width}} style="width:{{.Width}}"{{end}}>
{{- if not .Multiple}}
<option value="0"{{if .ZeroSelected}} selected{{end}}>{{.Empty}}</option>
{{- end}}
{{- range .Options}}
<option value="{{.ID}}"{{if .Selected}} selected{{end}}{{if .Title}} title="{{.Title}}"{{end}}>{{.Label}}</option>
{{- end}}
</select>
`))

type option struct {
	ID       int64
	Label    string
	Title    string
	Selected bool
}

type selectData struct {
	Name         string
	ID           string
	Multiple     bool
	Width        template.CSS
	ZeroSelected bool
	Empty        string
	Options      []option
}

// HTMLRenderer renders dropdowns from the rows an ItemLister returns
type HTMLRenderer struct {
	lister dbutil.ItemLister
}

// NewHTMLRenderer creates a renderer reading rows from lister
func NewHTMLRenderer(lister dbutil.ItemLister) *HTMLRenderer {
	return &HTMLRenderer{lister: lister}
}

// RenderDropdown writes a select control for table
func (r *HTMLRenderer) RenderDropdown(ctx context.Context, w io.Writer, itemType, table string, opts models.DropdownOptions) error {
	var items []models.LookupItem
	if table != "" && table != dbutil.NotAvailable {
		var err error
		items, err = r.lister.ListItems(ctx, table, models.LookupQuery{
			Entity:     opts.Entity,
			Conditions: opts.Condition,
		})
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", table, err)
		}
	}

	selected := opts.Value.IDs()
	data := selectData{
		Name:         opts.Name,
		ID:           "dropdown_" + strings.TrimSuffix(opts.Name, "[]"),
		Multiple:     opts.Multiple,
		Width:        template.CSS(opts.Width),
		ZeroSelected: !opts.Value.IsSet(),
		Empty:        EmptyLabel,
		Options:      make([]option, 0, len(items)),
	}
	if itemType != "" {
		data.ID += "_" + strings.ToLower(itemType)
	}

	for _, item := range items {
		o := option{
			ID:       item.ID,
			Label:    strings.Repeat("\u00a0\u00a0", item.Level) + item.Name,
			Selected: slices.Contains(selected, item.ID),
		}
		if opts.Comments {
			o.Title = item.DisplayName()
			if item.Comment != "" {
				o.Title += " - " + item.Comment
			}
		}
		data.Options = append(data.Options, o)
	}

	if err := selectTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render dropdown %s: %w", opts.Name, err)
	}
	return nil
}
