package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/rebeliceyang/lazyreports/internal/config"
	"github.com/rebeliceyang/lazyreports/internal/ui/theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options holds the global flags and what PersistentPreRunE builds from them
type options struct {
	configFile   string
	verbose      bool
	fixture      string
	reportName   string
	language     string
	activeEntity int64

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "lazyreports",
		Short: "Report criteria for GLPI lookup tables",
		Long: `lazyreports builds the criteria of asset reports: dropdowns bound to
lookup tables (groups, users, locations...) that render as HTML forms or a
terminal picker and produce the SQL restriction of the report query.

Criteria are given as --criteria field[@table-or-itemtype][:option,...]
with options multiple, children, zero, nocomments, entity=none|current|sub,
label=Text and condition=SQL. condition must come last since it takes the
rest of the option string, commas included. Without --criteria a Group
criteria on groups_id is used.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: user config dir)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&opts.fixture, "fixture", "", "YAML file of lookup tables used instead of the database")
	flags.StringVar(&opts.reportName, "report", "report", "Report name, used by bookmarks and history")
	flags.StringVar(&opts.language, "lang", "", "Language of labels (default: session.language)")
	flags.Int64Var(&opts.activeEntity, "active-entity", 0, "Active entity id (default: session.active_entity)")

	rootCmd.AddCommand(
		newSQLCmd(opts),
		newFormCmd(opts),
		newPickCmd(opts),
		newRunCmd(opts),
		newItemsCmd(opts),
		newTablesCmd(opts),
		newBookmarkCmd(opts),
		newHistoryCmd(opts),
		newPasswordCmd(opts),
	)

	return rootCmd
}

// init loads the configuration, applies flag overrides and builds the logger
func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("fixture") {
		cfg.Database.Fixture = o.fixture
	}
	if flags.Changed("lang") {
		cfg.Session.Language = o.language
	}
	if flags.Changed("active-entity") {
		cfg.Session.ActiveEntity = o.activeEntity
	}
	o.cfg = cfg

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if o.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	o.logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !slices.Contains(theme.Names(), cfg.UI.Theme) {
		o.logger.Warn("unknown theme, using default",
			zap.String("theme", cfg.UI.Theme), zap.Strings("available", theme.Names()))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
