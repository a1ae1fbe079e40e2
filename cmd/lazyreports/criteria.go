package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/bookmarks"
	"github.com/rebeliceyang/lazyreports/internal/criteria"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/rebeliceyang/lazyreports/internal/render"
	"github.com/rebeliceyang/lazyreports/internal/report"
	"github.com/spf13/cobra"
)

// criteriaSpec is one --criteria flag:
// field[@table-or-itemtype][:option,...]. condition= must be the last
// option, it keeps everything after it.
type criteriaSpec struct {
	Field      string
	Table      string
	Label      string
	Condition  string
	Multiple   bool
	Children   bool
	SearchZero bool
	NoComments bool
	Entity     *models.EntityRestriction
}

func parseCriteriaSpec(s string) (criteriaSpec, error) {
	var spec criteriaSpec

	head, options, _ := strings.Cut(s, ":")
	spec.Field, spec.Table, _ = strings.Cut(head, "@")
	spec.Field = strings.TrimSpace(spec.Field)
	spec.Table = strings.TrimSpace(spec.Table)
	if spec.Field == "" {
		return spec, fmt.Errorf("criteria %q: missing field name", s)
	}

	if options == "" {
		return spec, nil
	}
	for rest := options; rest != ""; {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "multiple":
			spec.Multiple = true
		case "children":
			spec.Children = true
		case "zero":
			spec.SearchZero = true
		case "nocomments":
			spec.NoComments = true
		case "label":
			spec.Label = value
		case "condition":
			// SQL holds commas, so the condition takes the rest of the options
			if rest != "" {
				value += "," + rest
				rest = ""
			}
			spec.Condition = strings.TrimSpace(value)
		case "entity":
			r, err := models.ParseEntityRestriction(value)
			if err != nil {
				return spec, fmt.Errorf("criteria %q: %w", s, err)
			}
			spec.Entity = &r
		case "":
		default:
			return spec, fmt.Errorf("criteria %q: unknown option %q", s, key)
		}
	}
	return spec, nil
}

// build creates the criteria on rep with its default values and options
func (s criteriaSpec) build(ctx context.Context, rep *report.Report) report.Criteria {
	var c *criteria.DropdownCriteria
	var result report.Criteria

	if s.Table == "" && rep.Resolver().TableForForeignKey(s.Field) == criteria.GroupTable {
		g := criteria.NewGroupCriteria(rep, s.Field, s.Label, s.Condition, s.Multiple)
		c, result = g.DropdownCriteria, g
	} else {
		c = criteria.NewDropdownCriteria(rep, s.Field, s.Table, s.Label, s.Condition, s.Multiple)
		result = c
	}

	c.SetDefaultValues(ctx)
	if s.Entity != nil {
		c.SetEntityRestriction(ctx, *s.Entity)
	}
	if s.NoComments {
		c.SetNoDisplayComments()
	}
	if s.Children {
		c.SetWithChildren()
	}
	if s.SearchZero {
		c.SetSearchZero()
	}
	return result
}

// criteriaFlags are the flags of every command that builds a report
type criteriaFlags struct {
	specs    []string
	query    string
	bookmark string
	values   []int64
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.specs, "criteria", "c", nil, "Criteria as field[@table-or-itemtype][:option,...] (repeatable)")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Submitted form values, e.g. 'groups_id=2&locations_id[]=10'")
	cmd.Flags().StringVarP(&f.bookmark, "bookmark", "b", "", "Apply the values of a saved bookmark")
	cmd.Flags().Int64SliceVar(&f.values, "value", nil, "Select ids on the first criteria")
}

// buildReport creates the report, its criteria and applies submitted values
func (o *options) buildReport(ctx context.Context, src *source, f *criteriaFlags) (*report.Report, error) {
	rep, err := report.New(o.reportName,
		report.Session{ActiveEntity: o.cfg.Session.ActiveEntity, Language: o.cfg.Session.Language},
		report.WithResolver(src.resolver),
		report.WithRenderer(render.NewHTMLRenderer(src.lister)),
		report.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	specs := f.specs
	if len(specs) == 0 {
		specs = []string{"groups_id"}
	}
	var first report.Criteria
	for _, raw := range specs {
		spec, err := parseCriteriaSpec(raw)
		if err != nil {
			return nil, err
		}
		c := spec.build(ctx, rep)
		if first == nil {
			first = c
		}
		rep.AddCriteria(c)
	}

	if f.bookmark != "" {
		manager, err := bookmarks.NewManager(o.cfg.Bookmarks.Path)
		if err != nil {
			return nil, err
		}
		values, err := manager.RecordUsage(f.bookmark)
		if err != nil {
			return nil, err
		}
		if err := rep.ApplyRequest(values); err != nil {
			return nil, err
		}
	}

	if f.query != "" {
		values, err := url.ParseQuery(strings.TrimPrefix(f.query, "?"))
		if err != nil {
			return nil, fmt.Errorf("invalid --query: %w", err)
		}
		if err := rep.ApplyRequest(values); err != nil {
			return nil, err
		}
	}

	if len(f.values) > 0 {
		if setter, ok := first.(interface{ SetValue(ids ...int64) }); ok {
			setter.SetValue(f.values...)
		}
	}

	return rep, nil
}

// resolveTable turns a table name or item type argument into a table
func resolveTable(r dbutil.Resolver, arg string) string {
	if strings.HasPrefix(arg, dbutil.TablePrefix) {
		return arg
	}
	if table := r.TableForForeignKey(arg); table != "" {
		return table
	}
	return r.TableForItemType(arg)
}
