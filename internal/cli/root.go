// Package cli implements the seqqc command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/me/seqqc/internal/config"
	"github.com/me/seqqc/internal/execution"
	"github.com/me/seqqc/internal/logging"
	"github.com/me/seqqc/internal/qc"
	"github.com/me/seqqc/internal/seqdir"
	"github.com/me/seqqc/internal/store"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands of one root command.
type app struct {
	registry *qc.Registry

	flagConfig       string
	flagDebug        bool
	flagLogLevel     string
	flagLogFormat    string
	flagHistoryDB    string
	flagStageTimeout time.Duration
	flagStrictLogs   bool
	flagStrictCopy   bool
	flagAssets       string
	flagTempDir      string

	cfg    config.Config
	logger *slog.Logger
	store  *store.SQLiteStore // nil when no history database is configured
	runner *execution.Runner
}

// NewRootCmd creates the root cobra command for the seqqc CLI.
func NewRootCmd(reg *qc.Registry) *cobra.Command {
	return newRootCmd(&app{registry: reg})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "seqqc",
		Short: "seqqc runs sequence quality-control tools and assembles their reports",
		Long: "seqqc wraps NanoPlot, FastQC, MultiQC and Chopper: it finds the reads of a\n" +
			"sequence directory, runs the tools and turns their output into an HTML\n" +
			"report or a new filtered sequence directory.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	def := config.DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&a.flagConfig, "config", "", "YAML config file (or "+config.EnvConfigPath+" env)")
	pf.BoolVar(&a.flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&a.flagLogLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flagLogFormat, "log-format", def.LogFormat, "Log format (text, json)")
	pf.StringVar(&a.flagHistoryDB, "history-db", "", "SQLite file recording every external command")
	pf.DurationVar(&a.flagStageTimeout, "stage-timeout", 0, "Kill any external process running longer than this (0 = no limit)")
	pf.BoolVar(&a.flagStrictLogs, "strict-logs", false, "Fail on malformed cutadapt logs instead of warning")
	pf.BoolVar(&a.flagStrictCopy, "strict-copy", false, "Fail when a cutadapt log cannot be copied")
	pf.StringVar(&a.flagAssets, "assets", "", "Directory overriding the embedded report templates")
	pf.StringVar(&a.flagTempDir, "temp-dir", "", "Parent directory for scratch files")

	root.AddCommand(
		newStatsCmd(a),
		newAggregateCmd(a),
		newChopCmd(a),
		newHistoryCmd(a),
		newViewCmd(a),
		newActionsCmd(a),
	)

	return root
}

// setup loads the config, applies explicitly set flags on top and builds
// the logger, the optional history store and the runner.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flagLogLevel
	}
	if a.flagDebug {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flagLogFormat
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = a.flagHistoryDB
	}
	if flags.Changed("stage-timeout") {
		cfg.StageTimeout = a.flagStageTimeout
	}
	if flags.Changed("strict-logs") {
		cfg.StrictLogs = a.flagStrictLogs
	}
	if flags.Changed("strict-copy") {
		cfg.StrictCopy = a.flagStrictCopy
	}
	if flags.Changed("assets") {
		cfg.AssetsDir = a.flagAssets
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = a.flagTempDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	opts := []execution.Option{
		execution.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		execution.WithStageTimeout(cfg.StageTimeout),
	}
	if cfg.HistoryDB != "" {
		st, err := store.NewSQLiteStore(cfg.HistoryDB, a.logger)
		if err != nil {
			return err
		}
		if err := st.Migrate(cmd.Context()); err != nil {
			st.Close()
			return fmt.Errorf("migrate history: %w", err)
		}
		a.store = st
		opts = append(opts, execution.WithRecorder(st))
		a.logger.Debug("history database ready", "path", cfg.HistoryDB)
	}
	a.runner = execution.NewRunner(a.logger, opts...)
	return nil
}

// runE wraps a command body so the history store is closed afterwards.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close history database", "error", err)
	}
	a.store = nil
}

// service builds the action service from the loaded config.
func (a *app) service() *qc.Service {
	svc := qc.NewService(a.runner, a.logger)
	svc.AssetsDir = a.cfg.AssetsDir
	svc.TempRoot = a.cfg.TempDir
	svc.StrictCopy = a.cfg.StrictCopy
	if a.cfg.StrictLogs {
		svc.LogMode = seqdir.Strict
	}
	return svc
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
