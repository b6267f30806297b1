// Package app wires the textdesk components together and manages their
// lifecycle: configuration, logging, the text session, persistence,
// Lua transformations and the dictation endpoint.
package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/dshills/textdesk/internal/config"
	"github.com/dshills/textdesk/internal/dictation"
	"github.com/dshills/textdesk/internal/engine"
	"github.com/dshills/textdesk/internal/engine/transform"
	"github.com/dshills/textdesk/internal/plugin/lua"
	"github.com/dshills/textdesk/internal/store"
)

// Application is the central coordinator for all textdesk components.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	config  *config.Config
	logger  *Logger
	metrics *Metrics

	// Session
	engine     *engine.Engine
	transforms *transform.Registry
	scripts    []*lua.Script

	// Persistence
	store     store.Store
	redis     *redis.Client
	autosaver *store.Autosaver

	// Dictation
	dictation *dictation.Server
	listener  net.Listener
	http      *http.Server

	// Live reload
	watcher *config.Watcher

	// State
	running  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means
	// defaults only and no live reload.
	ConfigPath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Store replaces the configured store backend.
	Store store.Store

	// DisableDictation skips starting the websocket endpoint.
	DisableDictation bool

	// DisableAutosave keeps the session from being saved in the background.
	DisableAutosave bool

	// Ephemeral runs without any store or dictation endpoint, for one-shot
	// commands that must not touch the saved session.
	Ephemeral bool
}

// New creates an Application with the given options. The saved session,
// if any, is restored before New returns.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		done: make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		app.shutdown()
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	// 2. Logger
	level := cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(level)
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.logger = NewLogger(logCfg)

	// 3. Transformations: built-ins plus Lua scripts
	app.transforms = transform.NewRegistry()
	if dir := cfg.Plugins.Dir; dir != "" {
		scripts, err := lua.LoadDir(dir, app.transforms)
		app.scripts = scripts
		if err != nil {
			// Broken scripts are skipped, the rest stay registered
			app.logger.WithComponent("plugins").Warn("%v", err)
		}
		app.logger.WithComponent("plugins").Info("loaded %d scripts from %s", len(scripts), dir)
	}

	// 4. Session
	app.engine = engine.New(
		engine.WithMaxUndoEntries(cfg.History.MaxEntries),
		engine.WithDefaultColor(cfg.Highlight.DefaultColor),
		engine.WithTransforms(app.transforms),
	)
	app.logger.Debug("session %s created", app.engine.ID())
	app.metrics = NewMetrics()
	app.engine.OnChange(app.metrics.RecordChange)

	// 5. Store
	if err := app.openStore(); err != nil {
		return &InitError{Component: "store", Err: err}
	}
	if err := app.restore(); err != nil {
		return &InitError{Component: "store", Err: err}
	}

	// 6. Autosave
	if app.store != nil && !app.opts.DisableAutosave {
		log := app.logger.WithComponent("autosave")
		app.autosaver = store.NewAutosaver(app.engine, app.store,
			store.WithDebounce(cfg.Autosave.Debounce.Std()),
			store.WithErrorHandler(func(err error) {
				app.metrics.RecordSave(err)
				log.Error("save failed: %v", err)
			}),
			store.WithSaveHandler(func(rev uint64) {
				app.metrics.RecordSave(nil)
				log.Debug("saved revision %d", rev)
			}),
		)
	}

	return nil
}

func (app *Application) openStore() error {
	if app.opts.Ephemeral {
		return nil
	}
	if app.opts.Store != nil {
		app.store = app.opts.Store
		return nil
	}

	sc := app.config.Store
	switch sc.Backend {
	case config.BackendFile:
		app.store = store.NewFileStore(sc.Path)
	case config.BackendRedis:
		app.redis = redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		app.store = store.NewRedisStore(app.redis, store.WithKey(sc.Key))
	case config.BackendNone:
	}
	return nil
}

// restore loads the saved record into the session without creating
// history.
func (app *Application) restore() error {
	if app.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), store.DefaultSaveTimeout)
	defer cancel()

	rec, err := app.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		app.logger.WithComponent("store").Debug("no saved session")
		return nil
	}
	if err != nil {
		return err
	}
	app.engine.Load(rec.Text)
	app.logger.WithComponent("store").Info("restored %d characters", app.engine.Statistics().Characters)
	return nil
}

// Engine returns the text session.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// Config returns the configuration currently in effect.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Transforms returns the transformation registry, including Lua scripts.
func (app *Application) Transforms() *transform.Registry {
	return app.transforms
}

// DictationAddr returns the address the dictation endpoint listens on, or
// nil if it is not running.
func (app *Application) DictationAddr() net.Addr {
	app.mu.RLock()
	defer app.mu.RUnlock()
	if app.listener == nil {
		return nil
	}
	return app.listener.Addr()
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
