package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyreports/internal/app"
	"github.com/rebeliceyang/lazyreports/internal/db/query"
	"github.com/rebeliceyang/lazyreports/internal/export"
	"github.com/rebeliceyang/lazyreports/internal/history"
	"github.com/rebeliceyang/lazyreports/internal/report"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSQLCmd(opts *options) *cobra.Command {
	var (
		flags   criteriaFlags
		link    string
		where   bool
		titles  bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL restriction of the criteria",
		Long: `Print the restriction to append after "WHERE 1=1" in the report query.

Example:
  lazyreports sql -c groups_id:children --value 2
  lazyreports sql -c groups_id -c locations_id:multiple -q 'locations_id[]=3&locations_id[]=4'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			rep, err := opts.buildReport(ctx, src, &flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if titles {
				for _, s := range rep.SubNames(ctx) {
					fmt.Fprintf(out, "-- %s\n", s)
				}
			}

			var restriction string
			if where {
				restriction, err = printWhere(ctx, out, rep)
			} else {
				restriction = restrictionWithLink(ctx, rep, link)
				fmt.Fprintln(out, restriction)
			}

			if !noStore {
				opts.recordHistory(rep, restriction, err)
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&link, "link", "AND", "Operator joining each fragment")
	cmd.Flags().BoolVar(&where, "where", false, "Print a parameterised WHERE clause and its arguments")
	cmd.Flags().BoolVar(&titles, "titles", false, "Print the criteria subtitles as SQL comments")
	cmd.Flags().BoolVar(&noStore, "no-history", false, "Do not record the restriction in the history")
	return cmd
}

func restrictionWithLink(ctx context.Context, rep *report.Report, link string) string {
	if link == "AND" {
		return rep.SQLRestriction(ctx)
	}
	var b strings.Builder
	for _, c := range rep.Criterias() {
		b.WriteString(c.SQLRestriction(ctx, link))
	}
	return b.String()
}

func printWhere(ctx context.Context, out io.Writer, rep *report.Report) (string, error) {
	w, err := rep.Where(ctx)
	if err != nil {
		return "", err
	}
	if w == nil {
		fmt.Fprintln(out, "1=1")
		return "", nil
	}

	sql, args, err := w.ToSql()
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out, sql)
	for i, arg := range args {
		fmt.Fprintf(out, "-- $%d = %v\n", i+1, arg)
	}
	return sql, nil
}

// recordHistory logs a generated restriction when history is enabled.
// Failures are logged, never returned.
func (o *options) recordHistory(rep *report.Report, restriction string, runErr error) {
	if !o.cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(o.cfg.History.Path)
	if err != nil {
		o.logger.Warn("failed to open history", zap.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	entry := history.Entry{
		Report:      rep.Name(),
		Query:       rep.BookmarkURL(),
		Restriction: restriction,
		Success:     runErr == nil,
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	if err := store.Add(entry); err != nil {
		o.logger.Warn("failed to record history", zap.Error(err))
		return
	}
	if err := store.Prune(o.cfg.History.MaxEntries); err != nil {
		o.logger.Warn("failed to prune history", zap.Error(err))
	}
}

func newFormCmd(opts *options) *cobra.Command {
	var flags criteriaFlags

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Print the HTML criteria form",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			rep, err := opts.buildReport(ctx, src, &flags)
			if err != nil {
				return err
			}
			return rep.DisplayCriteriaForm(ctx, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	return cmd
}

func newPickCmd(opts *options) *cobra.Command {
	var flags criteriaFlags

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Fill the criteria in a terminal form",
		Long: `Open the criteria form in the terminal. On exit the SQL restriction and
the bookmark query string are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			rep, err := opts.buildReport(ctx, src, &flags)
			if err != nil {
				return err
			}

			appOpts := []app.Option{
				app.WithTheme(theme.GetTheme(opts.cfg.UI.Theme)),
				app.WithLogger(opts.logger),
			}
			if opts.cfg.History.Enabled {
				store, err := history.NewStore(opts.cfg.History.Path)
				if err != nil {
					opts.logger.Warn("history disabled", zap.Error(err))
				} else {
					defer func() { _ = store.Close() }()
					appOpts = append(appOpts, app.WithHistory(store))
				}
			}

			teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
			if opts.cfg.UI.MouseEnabled {
				teaOpts = append(teaOpts, tea.WithMouseCellMotion())
			}

			p := tea.NewProgram(app.New(rep, src.lister, appOpts...), teaOpts...)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rep.SQLRestriction(ctx))
			if u := rep.BookmarkURL(); u != "" {
				fmt.Fprintf(out, "?%s\n", u)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		flags   criteriaFlags
		table   string
		columns []string
		orderBy string
		limit   uint64
		output  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the report query restricted by the criteria",
		Long: `Select rows of --table restricted by the criteria and print them, or
export them with --output file.csv|file.json|file.xlsx.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()
			if src.pool == nil {
				return errNeedsDatabase
			}

			rep, err := opts.buildReport(ctx, src, &flags)
			if err != nil {
				return err
			}
			where, err := rep.Where(ctx)
			if err != nil {
				return err
			}

			sql, sqlArgs, err := query.ReportQuery{
				Table:   resolveTable(src.resolver, table),
				Columns: columns,
				Where:   where,
				OrderBy: orderBy,
				Limit:   limit,
			}.Build()
			if err != nil {
				return err
			}
			opts.logger.Debug("running report", zap.String("sql", sql), zap.Any("args", sqlArgs))

			result := query.Execute(ctx, src.pool.GetPool(), sql, sqlArgs...)
			if result.Error != nil {
				return fmt.Errorf("report query failed: %w", result.Error)
			}

			if output != "" {
				if err := export.ToFile(export.ResultSheet(rep.Name(), result), output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(result.Rows), output)
				return nil
			}

			printTable(cmd.OutOrStdout(), result.Columns, result.Rows)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rows in %s\n", result.RowsAffected, result.Duration)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&table, "table", "t", "", "Table or item type to list (required)")
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"id", "name"}, "Columns to select")
	cmd.Flags().StringVar(&orderBy, "order-by", "name", "ORDER BY expression")
	cmd.Flags().Uint64Var(&limit, "limit", query.DefaultLimit, "Maximum rows")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export to this file instead of printing")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
