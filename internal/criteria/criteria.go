// Package criteria implements the selection criteria shown above a report
// and the SQL restrictions they contribute to the report query.
package criteria

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"go.uber.org/zap"
)

// Translator translates user visible strings
type Translator interface {
	T(key string) string
	Sprintf(format string, args ...any) string
}

// DropdownRenderer draws a select control for a lookup table
type DropdownRenderer interface {
	RenderDropdown(ctx context.Context, w io.Writer, itemType, table string, opts models.DropdownOptions) error
}

// Report is the context a criteria lives in
type Report interface {
	// ActiveEntity is the entity selected in the user's session
	ActiveEntity() int64
	Resolver() dbutil.Resolver
	Renderer() DropdownRenderer
	Translator() Translator
	Logger() *zap.Logger
	StartColumn(w io.Writer) error
	EndColumn(w io.Writer) error
}

type parameter struct {
	name  string
	value models.Value
}

// AutoCriteria holds what every criteria shares: its name, the SQL field it
// filters and the request parameters it reads.
type AutoCriteria struct {
	report   Report
	name     string
	sqlField string
	label    string
	labels   map[string]string
	params   []parameter
}

func newAutoCriteria(report Report, name, sqlField, label string) AutoCriteria {
	return AutoCriteria{
		report:   report,
		name:     name,
		sqlField: sqlField,
		label:    label,
		labels:   map[string]string{},
	}
}

// Report returns the owning report
func (c *AutoCriteria) Report() Report {
	return c.report
}

// Name returns the criteria name, which is also its request parameter
func (c *AutoCriteria) Name() string {
	return c.name
}

// SQLField returns the column the restriction applies to
func (c *AutoCriteria) SQLField() string {
	return c.sqlField
}

// SetSQLField changes the filtered column, e.g. to qualify it with a table alias
func (c *AutoCriteria) SetSQLField(field string) {
	c.sqlField = field
}

// Label returns the label of the criteria
func (c *AutoCriteria) Label() string {
	return c.LabelFor(c.name)
}

// LabelFor returns the label of a named parameter
func (c *AutoCriteria) LabelFor(name string) string {
	if label, ok := c.labels[name]; ok {
		return label
	}
	if name == c.name {
		return c.label
	}
	return ""
}

// SetCriteriaLabel changes the label of the parameter called name, or of
// the criteria itself when name is empty
func (c *AutoCriteria) SetCriteriaLabel(label, name string) {
	if name == "" {
		name = c.name
	}
	c.labels[name] = label
}

// AddParameter sets a parameter value, replacing any previous one
func (c *AutoCriteria) AddParameter(name string, value models.Value) {
	for i := range c.params {
		if c.params[i].name == name {
			c.params[i].value = value
			return
		}
	}
	c.params = append(c.params, parameter{name: name, value: value})
}

// Parameter returns a named parameter value
func (c *AutoCriteria) Parameter(name string) (models.Value, bool) {
	for _, p := range c.params {
		if p.name == name {
			return p.value, true
		}
	}
	return models.Value{}, false
}

// ParameterValue returns the value of the criteria's own parameter
func (c *AutoCriteria) ParameterValue() models.Value {
	v, _ := c.Parameter(c.name)
	return v
}

// BookmarkURL encodes the parameters as "&name=value" pairs
func (c *AutoCriteria) BookmarkURL() string {
	var b strings.Builder
	for _, p := range c.params {
		fmt.Fprintf(&b, "&%s=%s", p.name, p.value.String())
	}
	return b.String()
}

// ApplyRequest reads the criteria's parameters from submitted form values.
// Parameters missing from values keep their current value.
func (c *AutoCriteria) ApplyRequest(values url.Values) error {
	for _, p := range c.params {
		v, ok, err := readValue(values, p.name, p.value.IsList())
		if err != nil {
			return err
		}
		if ok {
			c.AddParameter(p.name, v)
		}
	}
	return nil
}

func (c *AutoCriteria) logger() *zap.Logger {
	if c.report == nil || c.report.Logger() == nil {
		return zap.NewNop()
	}
	return c.report.Logger()
}

// readValue parses name from values. Lists are read from name[] or the
// indexed name[0], name[1]... keys that bookmark URLs produce.
func readValue(values url.Values, name string, list bool) (models.Value, bool, error) {
	if !list {
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			return models.Value{}, false, nil
		}
		id, err := parseID(raw[0])
		if err != nil {
			return models.Value{}, false, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		return models.ScalarValue(id), true, nil
	}

	var raw []string
	found := false
	if vs, ok := values[name+"[]"]; ok {
		raw = append(raw, vs...)
		found = true
	}

	indexed := map[int]string{}
	prefix := name + "["
	for key, vs := range values {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") || len(vs) == 0 {
			continue
		}
		idx, err := strconv.Atoi(key[len(prefix) : len(key)-1])
		if err != nil {
			continue
		}
		indexed[idx] = vs[0]
		found = true
	}
	keys := make([]int, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		raw = append(raw, indexed[k])
	}

	if !found {
		if vs, ok := values[name]; ok {
			raw = vs
			found = true
		}
	}
	if !found {
		return models.Value{}, false, nil
	}

	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return models.Value{}, false, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return models.ListValue(ids...), true, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
