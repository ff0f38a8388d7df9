package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"github.com/arumata/vaultkeep/internal/adapters/loghandler"
	"github.com/arumata/vaultkeep/internal/app"
	"github.com/arumata/vaultkeep/internal/usecase"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	defer stop()

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetErr(os.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return mapExitCodeWithLog(err)
	}
	return exitSuccess
}

// rootOptions holds persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vaultkeep",
		Short:         "Manage the lifecycle of a fleet of backup repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to service config (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newRegisterCmd(opts),
		newUnregisterCmd(opts),
		newListCmd(opts),
		newLockCmd(opts),
		newUnlockCmd(opts),
		newLockAllCmd(opts),
		newUnlockAllCmd(opts),
		newCheckCmd(opts),
		newCheckAllCmd(opts),
		newMaintainCmd(opts),
		newMaintainAllCmd(opts),
		newRepairCmd(opts),
		newCompactCmd(opts),
		newCompactAllCmd(opts),
		newOptimizeCmd(opts),
		newOptimizeAllCmd(opts),
		newStatsCmd(opts),
		newStatsAllCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// appRuntime bundles everything a subcommand needs: logger, adapters, the
// loaded service config and the registry built from it.
type appRuntime struct {
	logger  *slog.Logger
	deps    *usecase.Dependencies
	cfg     usecase.ServiceConfig
	cfgPath string
	svc     *usecase.Service
	cleanup func()
}

// setup loads the service config and registers every persisted repository.
func (o *rootOptions) setup(ctx context.Context) (*appRuntime, error) {
	logger := newStderrLogger(o.verbose, o.noColor)

	cfgPath, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}

	deps := app.NewDefaultDependencies(logger)
	cfg, err := deps.Config.Load(ctx, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %v: %w", cfgPath, err, usecase.ErrOperationFailed)
	}

	logger, cleanup := withFileLogging(logger, cfg.Logging, o.verbose, o.noColor)
	deps = app.NewDefaultDependencies(logger)

	svc, err := usecase.BuildService(ctx, cfg, deps, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &appRuntime{
		logger:  logger,
		deps:    deps,
		cfg:     cfg,
		cfgPath: cfgPath,
		svc:     svc,
		cleanup: cleanup,
	}, nil
}

// saveConfig persists the (possibly mutated) service config.
func (rt *appRuntime) saveConfig(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(rt.cfgPath), 0o750); err != nil {
		return fmt.Errorf("create config dir: %v: %w", err, usecase.ErrOperationFailed)
	}
	if err := rt.deps.Config.Save(ctx, rt.cfgPath, rt.cfg); err != nil {
		return fmt.Errorf("save config %s: %v: %w", rt.cfgPath, err, usecase.ErrOperationFailed)
	}
	return nil
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	if strings.TrimSpace(o.configPath) != "" {
		return o.configPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %v: %w", err, usecase.ErrUsage)
	}
	return filepath.Join(dir, "vaultkeep", "config.toml"), nil
}

func newStderrLogger(verbose, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := loghandler.NewHandler(os.Stderr, &loghandler.Options{
		Level:    level,
		UseColor: !noColor && isTerminal(os.Stderr),
	})
	return slog.New(handler)
}

// withFileLogging adds a log file next to the stderr handler when the config
// names a directory. Failures fall back to stderr-only logging.
func withFileLogging(logger *slog.Logger, cfg usecase.LoggingConfig, verbose, noColor bool) (*slog.Logger, func()) {
	noop := func() {}
	if strings.TrimSpace(cfg.Dir) == "" {
		return logger, noop
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		logger.Warn("cannot create log dir", "dir", cfg.Dir, "error", err)
		return logger, noop
	}

	logPath := filepath.Join(cfg.Dir, "vaultkeep.log")
	// #nosec G304 - log path comes from the service config.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		logger.Warn("cannot open log file", "path", logPath, "error", err)
		return logger, noop
	}

	stderrHandler := loghandler.NewHandler(os.Stderr, &loghandler.Options{
		Level:    stderrLevel(verbose),
		UseColor: !noColor && isTerminal(os.Stderr),
	})
	fileHandler := loghandler.NewHandler(f, &loghandler.Options{
		Level: parseLevel(cfg.Level),
	})
	combined := loghandler.NewMultiHandler(stderrHandler, fileHandler)
	return slog.New(combined), func() { _ = f.Close() }
}

func stderrLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
