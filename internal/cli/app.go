package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bharathvbcr/liquitask/internal/config"
	"github.com/bharathvbcr/liquitask/internal/migrate"
	"github.com/bharathvbcr/liquitask/internal/model"
	"github.com/bharathvbcr/liquitask/internal/storage"
	"github.com/bharathvbcr/liquitask/internal/tasks"
)

// App owns the wired application: configuration, store, and domain
// engine. Commands obtain one through openApp and must Close it.
type App struct {
	Config config.Config
	Log    *log.Logger
	Store  *storage.Store
	Engine *tasks.Engine

	native *storage.NativeMedium
}

// openApp loads configuration, opens the configured media, and brings
// the store up to the current schema version. in feeds interactive
// confirmation prompts.
func openApp(opts *RootOptions, in io.Reader) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "liquitask",
	})
	logger.SetLevel(parseLevel(cfg.LogLevel, opts.Verbose))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create data directory", err)
	}

	app := &App{Config: cfg, Log: logger}

	var native storage.Medium
	if cfg.Strategy() == storage.NativeBacked {
		nm, err := storage.OpenNative(cfg.DatabasePath())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open database", err)
		}
		app.native = nm
		native = nm
	}

	local, err := storage.OpenLocal(cfg.LocalDir(), cfg.QuotaBytes, logger)
	if err != nil {
		app.closeMedia()
		return nil, WrapExitError(ExitCommandError, "open local storage", err)
	}

	store, err := storage.New(storage.Options{
		Strategy: cfg.Strategy(),
		Native:   native,
		Local:    local,
		Logger:   logger,
	})
	if err != nil {
		app.closeMedia()
		return nil, WrapExitError(ExitCommandError, "create store", err)
	}
	store.SetMigrator(migrate.New(store, logger))

	if err := store.Initialize(context.Background()); err != nil {
		store.Close()
		app.closeMedia()
		return nil, WrapExitError(ExitCommandError, "initialize store", err)
	}

	app.Store = store
	app.Engine = tasks.NewEngine(store, logger, tasks.WithConfirmer(promptConfirmer(in)))
	return app, nil
}

// Close flushes pending writes and releases the media.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
	a.closeMedia()
}

func (a *App) closeMedia() {
	if a.native != nil {
		if err := a.native.Close(); err != nil {
			a.Log.Warn("close database", "err", err)
		}
	}
}

// promptConfirmer asks y/N on the command's input stream before a
// destructive operation proceeds.
func promptConfirmer(in io.Reader) tasks.Confirmer {
	return func(task model.Task) bool {
		fmt.Fprintf(os.Stderr, "Delete task %q (%s)? [y/N] ", task.Title, task.JobID)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func parseLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
