package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/config"
	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/store"
	"github.com/roach88/stockroom/internal/store/postgres"
	"github.com/roach88/stockroom/internal/store/sqlite"
	"github.com/roach88/stockroom/internal/timeline"
)

// Execute runs the CLI with args and returns the process exit code.
// Errors are rendered with the --format the user chose.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return exitErr.Code
	}

	format := opts.Format
	if format != "json" {
		format = "text"
	}
	out := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	_ = out.Error(err)
	return GetExitCode(err)
}

// newLogger builds the text logger on w; --verbose switches to debug.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// session is everything a command needs once storage is connected.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	store    store.Store
	engine   *engine.Engine
	timeline *timeline.Orchestrator
	out      *OutputFormatter
}

// loadConfig reads the environment and applies the global flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.DBDriver != "" {
		cfg.DBDriver = o.DBDriver
	}
	if o.DSN != "" {
		cfg.DBDSN = o.DSN
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openSession loads config, connects to storage with retry and builds the
// engine. The caller must Close the session.
func (o *RootOptions) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(o.Verbose, cmd.ErrOrStderr())

	opener := func(ctx context.Context) (store.Store, error) {
		if cfg.DBDriver == config.DriverPostgres {
			st, err := postgres.Open(ctx, cfg.DBDSN, logger)
			if err != nil {
				return nil, err
			}
			return st, nil
		}
		st, err := sqlite.Open(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	policy := store.RetryPolicy{Attempts: cfg.ConnectAttempts, Interval: cfg.ConnectInterval}

	logger.Debug("opening store", "driver", cfg.DBDriver)
	st, err := store.Connect(cmd.Context(), opener, policy, logger)
	if err != nil {
		return nil, err
	}

	engOpts := append([]engine.Option{engine.WithLogger(logger)}, o.engineOptions...)
	eng := engine.New(st, engOpts...)
	return &session{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		engine:   eng,
		timeline: timeline.New(eng, logger),
		out: &OutputFormatter{
			Format:    o.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   o.Verbose,
		},
	}, nil
}

// Close releases the store, logging any failure.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}

// withSession wraps a command body with session setup and teardown.
func withSession(opts *RootOptions, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := opts.openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}
