// Package report provides the context criteria are displayed and evaluated in.
package report

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rebeliceyang/lazyreports/internal/criteria"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/locale"
	"go.uber.org/zap"
)

// Session is the part of the user session reports read
type Session struct {
	ActiveEntity int64
	Language     string
}

// Criteria is what a report needs from each of its criteria
type Criteria interface {
	Name() string
	Label() string
	ApplyRequest(values url.Values) error
	SQLRestriction(ctx context.Context, link string) string
	Where(ctx context.Context) (sq.Sqlizer, error)
	SubName(ctx context.Context) string
	BookmarkURL() string
	DisplayCriteria(ctx context.Context, w io.Writer) error
}

// Report holds the criteria of one report for the duration of a request
type Report struct {
	name       string
	session    Session
	resolver   dbutil.Resolver
	renderer   criteria.DropdownRenderer
	translator criteria.Translator
	logger     *zap.Logger
	criterias  []Criteria
}

var _ criteria.Report = (*Report)(nil)

// Option configures a Report
type Option func(*Report)

// WithResolver sets the table resolver
func WithResolver(r dbutil.Resolver) Option {
	return func(rep *Report) { rep.resolver = r }
}

// WithRenderer sets the dropdown renderer
func WithRenderer(r criteria.DropdownRenderer) Option {
	return func(rep *Report) { rep.renderer = r }
}

// WithTranslator overrides the translator derived from the session language
func WithTranslator(t criteria.Translator) Option {
	return func(rep *Report) { rep.translator = t }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(rep *Report) { rep.logger = l }
}

// New creates a report. Without a resolver only table names can be resolved;
// hierarchies are treated as flat.
func New(name string, session Session, opts ...Option) (*Report, error) {
	r := &Report{
		name:    name,
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.resolver == nil {
		r.resolver = dbutil.NewMemoryStore(dbutil.NewNaming(), nil)
	}
	if r.translator == nil {
		c, err := locale.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load translations: %w", err)
		}
		r.translator = c.Translator(session.Language)
	}

	return r, nil
}

// Name returns the report name
func (r *Report) Name() string { return r.name }

// Session returns the session the report runs in
func (r *Report) Session() Session { return r.session }

// ActiveEntity implements criteria.Report
func (r *Report) ActiveEntity() int64 { return r.session.ActiveEntity }

// Resolver implements criteria.Report
func (r *Report) Resolver() dbutil.Resolver { return r.resolver }

// Renderer implements criteria.Report
func (r *Report) Renderer() criteria.DropdownRenderer { return r.renderer }

// Translator implements criteria.Report
func (r *Report) Translator() criteria.Translator { return r.translator }

// Logger implements criteria.Report
func (r *Report) Logger() *zap.Logger { return r.logger }

// StartColumn opens a form column
func (r *Report) StartColumn(w io.Writer) error {
	_, err := io.WriteString(w, "<td>")
	return err
}

// EndColumn closes a form column
func (r *Report) EndColumn(w io.Writer) error {
	_, err := io.WriteString(w, "</td>\n")
	return err
}

// AddCriteria appends criteria to the form, in display order
func (r *Report) AddCriteria(c ...Criteria) {
	r.criterias = append(r.criterias, c...)
}

// Criterias returns the criteria in display order
func (r *Report) Criterias() []Criteria {
	return append([]Criteria{}, r.criterias...)
}

// ApplyRequest hands submitted form values to every criteria
func (r *Report) ApplyRequest(values url.Values) error {
	for _, c := range r.criterias {
		if err := c.ApplyRequest(values); err != nil {
			return fmt.Errorf("criteria %s: %w", c.Name(), err)
		}
	}
	return nil
}

// SQLRestriction concatenates the restrictions of every criteria, each
// prefixed with AND, ready to follow "WHERE 1=1"
func (r *Report) SQLRestriction(ctx context.Context) string {
	var b strings.Builder
	for _, c := range r.criterias {
		b.WriteString(c.SQLRestriction(ctx, "AND"))
	}
	return b.String()
}

// Where combines the parameterised restrictions of every criteria.
// It returns nil when no criteria restricts anything.
func (r *Report) Where(ctx context.Context) (sq.Sqlizer, error) {
	var and sq.And
	for _, c := range r.criterias {
		w, err := c.Where(ctx)
		if err != nil {
			return nil, fmt.Errorf("criteria %s: %w", c.Name(), err)
		}
		if w != nil {
			and = append(and, w)
		}
	}
	if len(and) == 0 {
		return nil, nil
	}
	return and, nil
}

// SubNames returns the non-empty subtitles of the criteria
func (r *Report) SubNames(ctx context.Context) []string {
	var names []string
	for _, c := range r.criterias {
		if s := c.SubName(ctx); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// BookmarkURL returns the query string reproducing the current selection
func (r *Report) BookmarkURL() string {
	var b strings.Builder
	for _, c := range r.criterias {
		b.WriteString(c.BookmarkURL())
	}
	return strings.TrimPrefix(b.String(), "&")
}

// DisplayCriteriaForm writes the criteria form, one row per criteria
func (r *Report) DisplayCriteriaForm(ctx context.Context, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "<form method=\"get\">\n<table class=\"tab_cadre\">\n<tr><th colspan=\"2\">%s</th></tr>\n",
		r.translator.T(locale.PluginKey("reports", "1"))); err != nil {
		return err
	}

	for _, c := range r.criterias {
		if _, err := io.WriteString(w, "<tr class=\"tab_bg_1\">\n"); err != nil {
			return err
		}
		if err := c.DisplayCriteria(ctx, w); err != nil {
			return fmt.Errorf("criteria %s: %w", c.Name(), err)
		}
		if _, err := io.WriteString(w, "</tr>\n"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</table>\n<input type=\"submit\" name=\"find\">\n</form>\n")
	return err
}
