package main

import (
	"fmt"
	"strconv"

	"github.com/rebeliceyang/lazyreports/internal/bookmarks"
	"github.com/spf13/cobra"
)

func newBookmarkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Manage saved criteria values",
	}

	var flags criteriaFlags
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save the current criteria values under name",
		Example: `  lazyreports bookmark add "IT and below" -c groups_id:children --value 1
  lazyreports bookmark add paris -c locations_id:multiple -q 'locations_id[]=10'`,
		Args: cobra.ExactArgs(1),
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

			manager, err := bookmarks.NewManager(opts.cfg.Bookmarks.Path)
			if err != nil {
				return err
			}
			b, err := manager.Add(args[0], rep.Name(), rep.BookmarkURL())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q for %s: %s\n", b.Name, b.Report, b.Query)
			return nil
		},
	}
	flags.register(addCmd)

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the bookmarks of the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := bookmarks.NewManager(opts.cfg.Bookmarks.Path)
			if err != nil {
				return err
			}

			list := manager.ForReport(opts.reportName)
			if all {
				list = manager.GetAll()
			}

			rows := make([][]string, 0, len(list))
			for _, b := range list {
				lastUsed := ""
				if !b.LastUsed.IsZero() {
					lastUsed = b.LastUsed.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{b.Name, b.Report, b.Query, strconv.Itoa(b.UsageCount), lastUsed})
			}
			printTable(cmd.OutOrStdout(), []string{"Name", "Report", "Query", "Used", "Last used"}, rows)
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&all, "all", "a", false, "List the bookmarks of every report")

	rmCmd := &cobra.Command{
		Use:     "rm <name|id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := bookmarks.NewManager(opts.cfg.Bookmarks.Path)
			if err != nil {
				return err
			}
			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, rmCmd)
	return cmd
}
