// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/gptchat-tui/internal/config"
	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/notify"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
	"github.com/jeranaias/gptchat-tui/internal/session"
	"github.com/jeranaias/gptchat-tui/internal/storage"
)

// File names inside the data directory.
const (
	PrefsFileName = "prefs.db"
	KeyFileName   = "master.key"
)

// =============================================================================
// APP
// =============================================================================

// App is the wired application shared by all commands.
type App struct {
	// Dir is the configuration directory holding config.toml.
	Dir    string
	Config *config.Config

	Prefs    prefs.Store
	Messages *storage.MessageStore
	Settings config.ClientSettings
	Client   *openai.Client
	Session  *session.Orchestrator
	Notifier notify.Notifier
	Logger   *slog.Logger

	// Terminal is the serialized stdout shared by the terminal notifier
	// and the TUI renderer. Nil when stdout is not a terminal.
	Terminal *notify.LockedFile

	Out io.Writer
	Err io.Writer

	modelOverride model.ModelID
	closers       []func() error
}

// AppOptions configures NewApp.
type AppOptions struct {
	Dir      string
	Config   *config.Config
	Prefs    prefs.Store
	Notifier notify.Notifier
	Logger   *slog.Logger
	Out      io.Writer
	Err      io.Writer

	// Model overrides the stored model for this process only.
	Model string
}

// NewApp wires the stores, the client and the orchestrator over an
// already opened preference store.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Prefs == nil {
		return nil, errors.New("preference store is required")
	}
	a := &App{
		Dir:      opts.Dir,
		Config:   opts.Config,
		Prefs:    opts.Prefs,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
		Out:      opts.Out,
		Err:      opts.Err,
	}
	if a.Config == nil {
		a.Config = config.Default()
	}
	if a.Logger == nil {
		a.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.Notifier == nil {
		a.Notifier = notify.Nop{}
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if opts.Model != "" {
		id, err := model.ParseModelID(opts.Model)
		if err != nil {
			return nil, &UsageError{Message: err.Error()}
		}
		a.modelOverride = id
	}

	a.Messages = storage.NewMessageStore(a.Prefs, storage.WithLogger(a.Logger))
	unsubscribe := a.Messages.Subscribe(notify.NewEmitter(a.Notifier, a.Logger))
	a.closers = append(a.closers, func() error { unsubscribe(); return nil })

	if err := a.loadSettings(); err != nil {
		a.Logger.Warn("invalid client settings replaced by defaults", "error", err)
	}
	a.Client = a.NewClient(a.Settings)
	a.Session = session.New(a.Messages, a.Client, session.WithLogger(a.Logger))
	return a, nil
}

// Open creates the configuration and data directories, opens the
// encrypted preference store and returns the wired App.
func Open(args Args, out, errOut io.Writer) (*App, error) {
	dir := args.DataDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir(dir)

	var closers []func() error
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	logger, closeLog, err := OpenLogger(cfg.LogPath(dir), level)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLog)

	lock, err := prefs.LockDir(dataDir)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, lock.Unlock)

	db, err := prefs.OpenSQLite(filepath.Join(dataDir, PrefsFileName))
	if err != nil {
		return fail(err)
	}
	closers = append(closers, db.Close)

	box, err := prefs.OpenSecretBox(filepath.Join(dataDir, KeyFileName))
	if err != nil {
		return fail(err)
	}

	var tty *notify.LockedFile
	if IsStdoutTTY() {
		tty = notify.NewLockedFile(os.Stdout)
	}

	app, err := NewApp(AppOptions{
		Dir:      dir,
		Config:   cfg,
		Prefs:    prefs.NewSecureStore(db, box, prefs.KeyAPIKey),
		Notifier: notifierFor(cfg, args.NoNotify, logger, tty),
		Logger:   logger,
		Out:      out,
		Err:      errOut,
		Model:    args.Model,
	})
	if err != nil {
		return fail(err)
	}
	app.Terminal = tty
	// Close in reverse: app observers, then db, lock and log.
	app.closers = append(closers, app.closers...)
	logger.Debug("app opened", "dir", dir, "data_dir", dataDir,
		"model", app.Settings.Model.String(), "configured", app.Client.IsConfigured())
	return app, nil
}

// notifierFor picks the notifier for reply notifications. tty is nil
// when stdout is not a terminal.
func notifierFor(cfg *config.Config, disabled bool, logger *slog.Logger, tty *notify.LockedFile) notify.Notifier {
	if disabled || !cfg.Notifications.Enabled {
		return notify.Nop{}
	}
	if tty != nil {
		return notify.Multi{notify.NewTerminal(tty), notify.NewLog(logger)}
	}
	return notify.NewLog(logger)
}

// OpenLogger opens a JSON slog logger appending to path.
func OpenLogger(path, level string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler), f.Close, nil
}

// ParseLevel maps debug, info, warn and error to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// =============================================================================
// CLIENT SETTINGS
// =============================================================================

func (a *App) loadSettings() error {
	s, err := config.LoadSettings(a.Prefs)
	s.ApplyEnvOverrides()
	if a.modelOverride != "" {
		s.Model = a.modelOverride
	}
	a.Settings = s
	return err
}

// NewClient builds an API client for s using the request settings of the
// app config.
func (a *App) NewClient(s config.ClientSettings) *openai.Client {
	return openai.New(s.ToClientConfig()).
		WithTimeout(a.Config.Timeout()).
		WithRateLimit(a.Config.Request.RatePerMinute).
		WithLogger(a.Logger)
}

// ClientFor builds a client for cfg from freshly loaded settings without
// changing the app. It is safe to call from the config watcher.
func (a *App) ClientFor(cfg *config.Config) (*openai.Client, error) {
	s, err := config.LoadSettings(a.Prefs)
	s.ApplyEnvOverrides()
	if a.modelOverride != "" {
		s.Model = a.modelOverride
	}
	client := openai.New(s.ToClientConfig()).
		WithTimeout(cfg.Timeout()).
		WithRateLimit(cfg.Request.RatePerMinute).
		WithLogger(a.Logger)
	return client, err
}

// ReloadSettings re-reads client settings and reconfigures the
// orchestrator with a new client.
func (a *App) ReloadSettings() (*openai.Client, error) {
	err := a.loadSettings()
	a.Client = a.NewClient(a.Settings)
	a.Session.Reconfigure(a.Client)
	return a.Client, err
}

// SaveAPIKey stores key and returns a client using it.
func (a *App) SaveAPIKey(key string) (session.Client, error) {
	if err := config.SetSetting(a.Prefs, "api-key", key); err != nil {
		return nil, err
	}
	a.Logger.Info("api key updated")
	client, err := a.ReloadSettings()
	if err != nil {
		a.Logger.Warn("settings reloaded with errors", "error", err)
	}
	return client, nil
}

// Close releases everything Open acquired, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
