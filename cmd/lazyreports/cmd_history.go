package main

import (
	"github.com/rebeliceyang/lazyreports/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recently generated restrictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.NewStore(opts.cfg.History.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var entries []history.Entry
			if all {
				entries, err = store.GetRecent(limit)
			} else {
				entries, err = store.ForReport(opts.reportName, limit)
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := "ok"
				if !e.Success {
					status = e.ErrorMessage
				}
				rows = append(rows, []string{
					e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
					e.Report,
					e.Query,
					e.Restriction,
					status,
				})
			}
			printTable(cmd.OutOrStdout(), []string{"When", "Report", "Query", "Restriction", "Status"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every report")
	return cmd
}
