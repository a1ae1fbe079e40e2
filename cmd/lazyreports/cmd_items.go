package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"github.com/rebeliceyang/lazyreports/internal/export"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/spf13/cobra"
)

func newItemsCmd(opts *options) *cobra.Command {
	var (
		format     string
		output     string
		entity     string
		conditions []string
	)

	cmd := &cobra.Command{
		Use:   "items <table|itemtype|foreign-key>",
		Short: "List or export the rows a dropdown offers",
		Example: `  lazyreports items Group
  lazyreports items glpi_locations --entity sub -o locations.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			table := resolveTable(src.resolver, args[0])
			if table == "" {
				return fmt.Errorf("cannot resolve %q to a table", args[0])
			}

			restriction, err := models.ParseEntityRestriction(entity)
			if err != nil {
				return err
			}
			scope, err := dbutil.EntityScope(ctx, src.resolver, opts.cfg.Session.ActiveEntity, restriction)
			if err != nil {
				return err
			}

			items, err := src.lister.ListItems(ctx, table, models.LookupQuery{Entity: scope, Conditions: conditions})
			if err != nil {
				return err
			}
			sheet := export.ItemsSheet(table, items)

			if output != "" {
				if err := export.ToFile(sheet, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows of %s to %s\n", len(items), table, output)
				return nil
			}

			if format == "" || format == "table" {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						strings.Repeat("  ", item.Level) + item.Name,
						item.Comment,
					})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Comment"}, rows)
				return nil
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.XLSX && cmd.OutOrStdout() == os.Stdout {
				return fmt.Errorf("xlsx needs --output")
			}
			return export.Write(cmd.OutOrStdout(), sheet, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, csv, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export to file; format from extension (csv, json, xlsx)")
	cmd.Flags().StringVar(&entity, "entity", "none", "Entity restriction: none, current, sub")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "Raw SQL condition on the rows (repeatable, database only)")
	return cmd
}

func newTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the lookup tables and their item types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			var rows [][]string
			if src.memory != nil {
				for _, name := range src.memory.Tables() {
					rows = append(rows, []string{name, src.resolver.ItemTypeForTable(name), ""})
				}
			} else {
				tables, err := src.store.Tables(ctx)
				if err != nil {
					return err
				}
				for _, t := range tables {
					rows = append(rows, []string{t.Name, t.ItemType, t.Size})
				}
			}

			printTable(cmd.OutOrStdout(), []string{"Table", "Item type", "Size"}, rows)
			return nil
		},
	}
}
