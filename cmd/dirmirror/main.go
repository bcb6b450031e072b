package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dirmirror/internal/config"
	"github.com/bamsammich/dirmirror/internal/engine"
	"github.com/bamsammich/dirmirror/internal/filter"
	"github.com/bamsammich/dirmirror/internal/lock"
	"github.com/bamsammich/dirmirror/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	src         string
	dst         string
	logFile     string
	logLevel    string
	logFormat   string
	configPath  string
	filterFile  string
	timeToSync  int
	hash        engine.Algorithm
	dryRun      bool
	once        bool
	exitOnError bool
	showVersion bool
}

// run executes the CLI and returns the process exit code: 0 on a clean stop,
// 1 when the sync loop fails, 2 for usage and startup errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "dirmirror -s SOURCE -o OUTPUT -l LOGFILE [flags]",
		Short: "Keep a directory an exact one-way mirror of another, re-syncing on an interval",
		Long: `dirmirror makes the output directory an exact copy of the source directory,
then sleeps for --time-to-sync seconds and does it again, until stopped.

Files are compared by content fingerprint, not timestamp. Entries missing from
the source are deleted from the output. Every change is logged to the log file
and to stderr.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "dirmirror %s\n", version)
				return nil
			}
			return mirror(cmd, opts, chain, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	flags.StringVarP(&opts.src, "source-directory", "s", "", "directory to mirror from (required)")
	flags.StringVarP(&opts.dst, "output-directory", "o", "", "directory to mirror into (required)")
	flags.StringVarP(&opts.logFile, "log-file-path", "l", "", "append log records to FILE (required)")
	flags.IntVarP(&opts.timeToSync, "time-to-sync", "t", int(engine.DefaultInterval/time.Second),
		"seconds to wait after a cycle before the next one")

	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", ui.FormatText, "log file format (text or json)")
	flags.Var(&hashFlag{alg: &opts.hash}, "hash", "fingerprint algorithm (blake3, xxhash or md5)")

	flags.Var(&filterFlag{chain: chain}, "exclude", "exclude paths matching PATTERN (repeatable)")
	flags.Var(&filterFlag{chain: chain, include: true}, "include", "include paths matching PATTERN (repeatable)")
	flags.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")

	flags.BoolVar(&opts.dryRun, "dry-run", false, "log what would change without touching the output directory")
	flags.BoolVar(&opts.once, "once", false, "run a single cycle and exit")
	flags.BoolVar(&opts.exitOnError, "exit-on-error", false, "exit with status 1 when a cycle fails instead of retrying next cycle")
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dirmirror/config.toml)")

	flags.SortFlags = false

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

// mirror validates the configuration, sets up logging and the instance lock,
// and runs the sync loop until the context is cancelled.
//
//nolint:revive // cognitive-complexity: startup orchestration reads top to bottom
func mirror(cmd *cobra.Command, opts *options, chain *filter.Chain, stderr io.Writer) error {
	for _, name := range []string{"source-directory", "output-directory", "log-file-path"} {
		if !cmd.Flags().Changed(name) {
			return fmt.Errorf("required flag --%s not set", name)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyConfigDefaults(cmd, cfg.Defaults, opts, chain); err != nil {
		return err
	}

	if opts.timeToSync < 0 {
		return fmt.Errorf("invalid --time-to-sync %d: must be >= 0", opts.timeToSync)
	}
	level, err := ui.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if opts.filterFile != "" {
		if err := chain.LoadFile(opts.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}

	src, err := config.ValidateDirectory(opts.src)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	dst, err := config.ValidateDirectory(opts.dst)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if err := config.CheckDisjoint(src, dst); err != nil {
		return err
	}
	if err := config.CheckLogPath(opts.logFile, src, dst); err != nil {
		return err
	}

	logFile, err := config.PrepareLogFile(opts.logFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	color := false
	if f, ok := stderr.(*os.File); ok {
		color = ui.IsTTY(f.Fd())
	}
	logger, err := ui.NewLogger(ui.LoggerOptions{
		File:    logFile,
		Console: stderr,
		Format:  opts.logFormat,
		Level:   level,
		Color:   color,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	lk, err := lock.Acquire(dst)
	if err != nil {
		return err
	}
	defer func() {
		if err := lk.Release(); err != nil {
			slog.Warn("release lock", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(opts.timeToSync) * time.Second
	slog.Debug("configuration",
		"version", version,
		"source", src,
		"destination", dst,
		"interval", interval,
		"hash", opts.hash.String(),
		"filters", chain.Patterns(),
		"dry_run", opts.dryRun,
		"lock", lk.Path(),
	)

	var ruleFilter *filter.Chain
	if !chain.Empty() {
		ruleFilter = chain
	}
	reconciler := engine.NewReconciler(engine.Options{
		Recorder: ui.NewAuditLog(logger),
		Hasher:   engine.Hasher{Algorithm: opts.hash},
		Filter:   ruleFilter,
		DryRun:   opts.dryRun,
	})

	driverCfg := engine.DriverConfig{
		Src:         src,
		Dst:         dst,
		Interval:    interval,
		ExitOnError: opts.exitOnError,
	}
	if opts.once {
		driverCfg.Cycles = 1
	}

	if err := engine.NewDriver(reconciler, driverCfg).Run(ctx); err != nil {
		// Already logged as a failed cycle.
		return &exitError{code: 1}
	}
	if ctx.Err() != nil {
		slog.Info("shutting down")
	}
	return nil
}

// applyConfigDefaults fills in options the command line left unset from the
// config file.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	opts *options,
	chain *filter.Chain,
) error {
	flags := cmd.Flags()
	if !flags.Changed("time-to-sync") && defaults.TimeToSync != nil {
		opts.timeToSync = *defaults.TimeToSync
	}
	if !flags.Changed("log-level") && defaults.LogLevel != nil {
		opts.logLevel = *defaults.LogLevel
	}
	if !flags.Changed("log-format") && defaults.LogFormat != nil {
		opts.logFormat = *defaults.LogFormat
	}
	if !flags.Changed("exit-on-error") && defaults.ExitOnError != nil {
		opts.exitOnError = *defaults.ExitOnError
	}
	if !flags.Changed("hash") && defaults.Hash != nil {
		alg, err := engine.ParseAlgorithm(*defaults.Hash)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		opts.hash = alg
	}
	if !flags.Changed("exclude") && !flags.Changed("include") && !flags.Changed("filter") {
		for _, p := range defaults.Exclude {
			if err := chain.AddExclude(p); err != nil {
				return fmt.Errorf("config exclude: %w", err)
			}
		}
	}
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
