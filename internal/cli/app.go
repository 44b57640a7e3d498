package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-catalog/internal/config"
	"library-catalog/internal/logger"
	"library-catalog/library"
)

// app is the wiring shared by the catalog commands.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *library.Database // nil when running in memory
	mgr   *library.LibraryManager
	out   *OutputFormatter

	// In JSON mode notify is stderr so stdout stays a single JSON document.
	notify io.Writer
}

// loadConfig reads configuration and installs the logger.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DBPath != "" {
		cfg.DB.Path = opts.DBPath
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	if opts.Verbose {
		logger.UpdateLevel("debug")
	}
	return cfg, nil
}

// notifyWriter is where user notifications and console emails go.
func notifyWriter(opts *RootOptions, cfg *config.Config, cmd *cobra.Command) io.Writer {
	if opts.Format == "json" || cfg.Notify.Output == "stderr" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// openApp loads configuration, sets up logging, opens the database when one
// is configured and subscribes every stored user to the manager.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	return openAppWith(opts, cmd, true)
}

// openAppWith is openApp with control over whether stored users are subscribed.
func openAppWith(opts *RootOptions, cmd *cobra.Command, subscribeUsers bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    logger.Get(),
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
		notify: notifyWriter(opts, cfg, cmd),
	}

	email := library.MultiEmailService{
		library.NewConsoleEmailService(a.notify),
		library.NewLogEmailService(a.log),
	}
	mgrOpts := []library.Option{library.WithLogger(a.log)}

	if cfg.Persistent() {
		a.log.Debug("opening database", zap.String("path", cfg.DB.Path))
		a.db, err = library.NewDatabase(cfg.DB.Path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		mgrOpts = append(mgrOpts, library.WithStore(a.db))
	}

	a.mgr = library.NewLibraryManager(email, mgrOpts...)
	if err := a.mgr.Load(); err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load library", err)
	}

	if a.db != nil && subscribeUsers {
		users, err := a.db.LoadUsers()
		if err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "failed to load users", err)
		}
		for _, u := range users {
			a.mgr.AddObserver(u.WithOutput(a.notify))
		}
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.mgr.Close(); err != nil {
		a.log.Error("error closing database", zap.Error(err))
	}
}

// fail reports err through the formatter and turns it into an exit error.
func (a *app) fail(err error) error {
	code, exit := CodeStorage, ExitCommandError
	switch {
	case errors.Is(err, library.ErrBookNotFound):
		code, exit = CodeNotFound, ExitFailure
	case errors.Is(err, library.ErrInvalidBook):
		code, exit = CodeInvalidBook, ExitFailure
	}
	if outErr := a.out.Error(code, err.Error()); outErr != nil {
		return outErr
	}
	return reported(WrapExitError(exit, code, err))
}
