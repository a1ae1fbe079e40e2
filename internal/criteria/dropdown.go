package criteria

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/locale"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"go.uber.org/zap"
)

// ErrNoRenderer is returned when a criteria has no report or the report
// has no dropdown renderer
var ErrNoRenderer = errors.New("report has no dropdown renderer")

// DropdownCriteria selects rows of a lookup table
type DropdownCriteria struct {
	AutoCriteria

	// TODO: bind to the item type first and derive the table from it
	table string

	// include the descendants of the selected row
	children bool

	entityRestrict  models.EntityScope
	displayComments bool

	// filter on zero when nothing is selected, instead of dropping the filter
	searchZero bool

	// raw condition passed to the dropdown
	condition string

	multiple bool
}

// NewDropdownCriteria creates a criteria called name. tableOrType is a table
// name (glpi_*), dbutil.NotAvailable, an item type, or empty to infer the
// table from the name (groups_id -> glpi_groups).
func NewDropdownCriteria(report Report, name, tableOrType, label, condition string, multiple bool) *DropdownCriteria {
	c := &DropdownCriteria{
		AutoCriteria: newAutoCriteria(report, name, name, label),
		condition:    condition,
		multiple:     multiple,
	}
	c.table = resolveTable(c.resolver(), name, tableOrType)
	c.AddParameter(name, c.defaultValue())
	return c
}

func resolveTable(r dbutil.Resolver, name, tableOrType string) string {
	switch {
	case tableOrType == "":
		return r.TableForForeignKey(name)
	case strings.HasPrefix(tableOrType, dbutil.TablePrefix):
		return tableOrType
	case tableOrType == dbutil.NotAvailable:
		return dbutil.NotAvailable
	default:
		return r.TableForItemType(tableOrType)
	}
}

func (c *DropdownCriteria) resolver() dbutil.Resolver {
	if c.report != nil && c.report.Resolver() != nil {
		return c.report.Resolver()
	}
	return dbutil.NewMemoryStore(dbutil.NewNaming(), nil)
}

func (c *DropdownCriteria) translator() Translator {
	if c.report != nil && c.report.Translator() != nil {
		return c.report.Translator()
	}
	return locale.Default()
}

func (c *DropdownCriteria) defaultValue() models.Value {
	if c.multiple {
		return models.ListValue()
	}
	return models.ScalarValue(0)
}

// Table returns the lookup table, "" when it could not be resolved
func (c *DropdownCriteria) Table() string {
	return c.table
}

// ItemType returns the item type stored in the lookup table
func (c *DropdownCriteria) ItemType() string {
	return c.resolver().ItemTypeForTable(c.table)
}

// Multiple reports whether several rows may be selected
func (c *DropdownCriteria) Multiple() bool {
	return c.multiple
}

// Condition returns the raw condition handed to the dropdown
func (c *DropdownCriteria) Condition() string {
	return c.condition
}

// SetWithChildren makes a selected row also match its descendants
func (c *DropdownCriteria) SetWithChildren() {
	c.children = true
}

// SetNoChildren matches the selected row only
func (c *DropdownCriteria) SetNoChildren() {
	c.children = false
}

// WithChildren reports whether descendants are included
func (c *DropdownCriteria) WithChildren() bool {
	return c.children
}

// SetSearchZero makes "nothing selected" filter on 0 rather than match everything
func (c *DropdownCriteria) SetSearchZero() {
	c.searchZero = true
}

// SetNoSearchZero makes "nothing selected" match everything again
func (c *DropdownCriteria) SetNoSearchZero() {
	c.searchZero = false
}

// SearchZero reports whether zero is searched for
func (c *DropdownCriteria) SearchZero() bool {
	return c.searchZero
}

// SetDefaultValues selects nothing, restricts the dropdown to the current
// entity and shows comments
func (c *DropdownCriteria) SetDefaultValues(ctx context.Context) {
	c.AddParameter(c.name, c.defaultValue())
	c.SetEntityRestriction(ctx, models.CurrentEntity)
	c.SetDisplayComments()
}

// SetValue selects ids. A single-select criteria keeps the first id only.
func (c *DropdownCriteria) SetValue(ids ...int64) {
	if c.multiple {
		c.AddParameter(c.name, models.ListValue(ids...))
		return
	}
	var id int64
	if len(ids) > 0 {
		id = ids[0]
	}
	c.AddParameter(c.name, models.ScalarValue(id))
}

// SetDisplayComments shows row comments in the dropdown
func (c *DropdownCriteria) SetDisplayComments() {
	c.displayComments = true
}

// SetNoDisplayComments hides row comments
func (c *DropdownCriteria) SetNoDisplayComments() {
	c.displayComments = false
}

// DisplayComments reports whether comments are shown
func (c *DropdownCriteria) DisplayComments() bool {
	return c.displayComments
}

// SetEntityRestriction resolves r against the session's active entity.
// When the sub-entities cannot be read the dropdown falls back to the
// active entity alone.
func (c *DropdownCriteria) SetEntityRestriction(ctx context.Context, r models.EntityRestriction) {
	var active int64
	if c.report != nil {
		active = c.report.ActiveEntity()
	}

	scope, err := dbutil.EntityScope(ctx, c.resolver(), active, r)
	if err != nil {
		c.logger().Warn("failed to read sub-entities",
			zap.Int64("entity", active), zap.Error(err))
	}
	c.entityRestrict = scope
}

// EntityRestrict returns the resolved entity scope
func (c *DropdownCriteria) EntityRestrict() models.EntityScope {
	return c.entityRestrict
}

// SubName describes the selection for the report subtitle
func (c *DropdownCriteria) SubName(ctx context.Context) string {
	if names := c.SelectionNames(ctx); len(names) > 0 {
		return c.Label() + " : " + strings.Join(names, ", ")
	}

	if c.searchZero {
		tr := c.translator()
		return tr.Sprintf("%[1]s: %[2]s", c.Label(), tr.T("None"))
	}

	// everything
	return ""
}

// SelectionNames returns the labels of the selected rows, nil when nothing
// is selected. A row that cannot be read is named "(<id>)".
func (c *DropdownCriteria) SelectionNames(ctx context.Context) []string {
	value := c.ParameterValue()
	if !value.IsSet() {
		return nil
	}
	ids := value.IDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, c.dropdownName(ctx, id))
	}
	return names
}

func (c *DropdownCriteria) dropdownName(ctx context.Context, id int64) string {
	name, err := c.resolver().DropdownName(ctx, c.table, id)
	if err != nil {
		c.logger().Warn("failed to resolve dropdown name",
			zap.String("table", c.table), zap.Int64("id", id), zap.Error(err))
		return fmt.Sprintf("(%d)", id)
	}
	return name
}

// DisplayCriteria writes the label column followed by the dropdown column
func (c *DropdownCriteria) DisplayCriteria(ctx context.Context, w io.Writer) error {
	if c.report == nil {
		return ErrNoRenderer
	}
	if err := c.report.StartColumn(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, html.EscapeString(c.Label())+"&nbsp;:"); err != nil {
		return err
	}
	if err := c.report.EndColumn(w); err != nil {
		return err
	}

	if err := c.report.StartColumn(w); err != nil {
		return err
	}
	if err := c.DisplayDropdown(ctx, w); err != nil {
		return err
	}
	return c.report.EndColumn(w)
}

// DropdownOptions returns the options handed to the renderer
func (c *DropdownCriteria) DropdownOptions() models.DropdownOptions {
	opts := models.DropdownOptions{
		Name:     c.name,
		Value:    c.ParameterValue(),
		Comments: c.displayComments,
		Entity:   c.entityRestrict,
	}

	if c.condition != "" {
		opts.Condition = []string{c.condition}
	}

	if c.multiple {
		values := c.ParameterValue().IDs()
		opts.Multiple = true
		opts.Used = values
		opts.Value = models.ListValue(values...)
		opts.Name += "[]"
		opts.Width = "100%"
	}

	return opts
}

// DisplayDropdown renders the dropdown through the report's renderer
func (c *DropdownCriteria) DisplayDropdown(ctx context.Context, w io.Writer) error {
	if c.report == nil || c.report.Renderer() == nil {
		return ErrNoRenderer
	}
	return c.report.Renderer().RenderDropdown(ctx, w, c.ItemType(), c.table, c.DropdownOptions())
}

// BookmarkURL encodes the selection; lists use indexed keys (name[0]=...)
func (c *DropdownCriteria) BookmarkURL() string {
	if !c.multiple {
		return c.AutoCriteria.BookmarkURL()
	}

	var b strings.Builder
	for _, p := range c.params {
		if !p.value.IsList() {
			fmt.Fprintf(&b, "&%s=%s", p.name, p.value.String())
			continue
		}
		for i, id := range p.value.IDs() {
			fmt.Fprintf(&b, "&%s[%d]=%d", p.name, i, id)
		}
	}
	return b.String()
}

type restrictionKind int

const (
	noRestriction restrictionKind = iota
	equalRestriction
	inRestriction
)

type restriction struct {
	kind  restrictionKind
	value int64
	ids   []int64
}

// restriction decides what the criteria filters on. When descendants cannot
// be read the selected row alone is kept, together with the error.
func (c *DropdownCriteria) restriction(ctx context.Context) (restriction, error) {
	value := c.ParameterValue()

	if !value.IsSet() && !c.searchZero {
		// zero means everything
		return restriction{kind: noRestriction}, nil
	}

	if c.multiple && value.IsSet() {
		return restriction{kind: inRestriction, ids: value.IDs()}, nil
	}

	if !c.children {
		return restriction{kind: equalRestriction, value: value.Int()}, nil
	}

	if value.IsSet() {
		id := value.Int()
		sons, err := c.resolver().SonsOf(ctx, c.table, id)
		if err != nil || len(sons) == 0 {
			return restriction{kind: inRestriction, ids: []int64{id}}, err
		}
		return restriction{kind: inRestriction, ids: sons}, nil
	}

	// zero and its children means everything
	return restriction{kind: noRestriction}, nil
}

// SQLRestriction returns the SQL fragment for the report query, prefixed
// with link ("AND" when empty), or "" when the criteria matches every row.
// Ids are formatted as integers, so the fragment is safe to embed.
func (c *DropdownCriteria) SQLRestriction(ctx context.Context, link string) string {
	if link == "" {
		link = "AND"
	}

	r, err := c.restriction(ctx)
	if err != nil {
		c.logger().Warn("failed to expand descendants, restricting to the selected row",
			zap.String("table", c.table), zap.Int64s("ids", r.ids), zap.Error(err))
	}

	switch r.kind {
	case equalRestriction:
		return fmt.Sprintf("%s %s='%d' ", link, c.sqlField, r.value)
	case inRestriction:
		return fmt.Sprintf("%s %s IN (%s) ", link, c.sqlField, models.JoinIDs(r.ids))
	default:
		return ""
	}
}

// Where returns the restriction as a squirrel predicate, nil when the
// criteria matches every row
func (c *DropdownCriteria) Where(ctx context.Context) (sq.Sqlizer, error) {
	r, err := c.restriction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", c.table, err)
	}

	switch r.kind {
	case equalRestriction:
		return sq.Eq{c.sqlField: r.value}, nil
	case inRestriction:
		return sq.Eq{c.sqlField: r.ids}, nil
	default:
		return nil, nil
	}
}
