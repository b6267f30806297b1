package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dshills/textdesk/internal/config"
	"github.com/dshills/textdesk/internal/dictation"
)

// ShutdownTimeout bounds the final save and server shutdown.
const ShutdownTimeout = 5 * time.Second

// Run starts the background services and blocks until ctx is canceled or
// Shutdown is called. Components are stopped before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.shutdown()

	if err := app.startWatcher(); err != nil {
		app.logger.WithComponent("config").Warn("live reload disabled: %v", err)
	}

	feedDone := make(chan struct{})
	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()

	if err := app.startDictation(); err != nil {
		return &InitError{Component: "dictation", Err: err}
	}
	if app.dictation != nil {
		go func() {
			defer close(feedDone)
			n, err := dictation.Feed(feedCtx, app.dictation, app.engine)
			if err != nil && !errors.Is(err, context.Canceled) {
				app.logger.WithComponent("dictation").Error("feed stopped: %v", err)
			}
			app.logger.WithComponent("dictation").Debug("applied %d chunks", n)
		}()
	} else {
		close(feedDone)
	}

	app.logger.Info("session %s running", app.engine.ID())

	select {
	case <-ctx.Done():
	case <-app.done:
	}

	stopFeed()
	<-feedDone
	return nil
}

func (app *Application) startWatcher() error {
	if app.opts.ConfigPath == "" {
		return nil
	}
	log := app.logger.WithComponent("config")
	w, err := config.NewWatcher(app.opts.ConfigPath, app.applyConfig,
		config.WithReloadErrorHandler(func(err error) {
			log.Error("reload failed, keeping previous config: %v", err)
		}))
	if err != nil {
		return err
	}

	app.mu.Lock()
	app.watcher = w
	app.mu.Unlock()
	return nil
}

// applyConfig applies the settings that can change while running.
func (app *Application) applyConfig(cfg *config.Config) {
	app.mu.Lock()
	app.config = cfg
	app.mu.Unlock()

	if app.opts.LogLevel == "" {
		app.logger.SetLevel(ParseLogLevel(cfg.Log.Level))
	}
	app.engine.SetDefaultColor(cfg.Highlight.DefaultColor)
	app.engine.SetMaxUndoEntries(cfg.History.MaxEntries)
	app.metrics.RecordReload()
	app.logger.WithComponent("config").Info("configuration reloaded")
}

func (app *Application) startDictation() error {
	// The watcher may already be swapping the config.
	dc := app.Config().Dictation
	if app.opts.DisableDictation || app.opts.Ephemeral || dc.Listen == "" {
		return nil
	}

	ln, err := net.Listen("tcp", dc.Listen)
	if err != nil {
		return err
	}

	srv := dictation.NewServer(dictation.WithLogger(app.logger.WithComponent("dictation")))
	mux := http.NewServeMux()
	mux.Handle(dc.Path, srv)
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	app.mu.Lock()
	app.dictation = srv
	app.listener = ln
	app.http = httpSrv
	app.mu.Unlock()

	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.WithComponent("dictation").Error("server: %v", err)
		}
	}()
	app.logger.WithComponent("dictation").Info("listening on ws://%s%s", ln.Addr(), dc.Path)
	return nil
}

// Shutdown asks a running application to stop. Run performs the cleanup.
func (app *Application) Shutdown() {
	app.doneOnce.Do(func() { close(app.done) })
}

// Close releases resources for an application that was never run.
func (app *Application) Close() error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}
	return app.shutdown()
}

// shutdown performs cleanup in reverse initialization order.
func (app *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	errs := NewErrorList()

	app.mu.Lock()
	watcher, dict, httpSrv := app.watcher, app.dictation, app.http
	app.watcher, app.dictation, app.http, app.listener = nil, nil, nil, nil
	app.mu.Unlock()

	// 1. Stop live reload
	if watcher != nil {
		errs.Add(NewComponentError("config", "close watcher", watcher.Close()).orNil())
	}

	// 2. Stop dictation
	if dict != nil {
		errs.Add(NewComponentError("dictation", "close", dict.Close()).orNil())
	}
	if httpSrv != nil {
		errs.Add(NewComponentError("dictation", "shutdown server", httpSrv.Shutdown(ctx)).orNil())
	}

	// 3. Flush the last edit
	if app.autosaver != nil {
		errs.Add(NewComponentError("autosave", "flush", app.autosaver.Close(ctx)).orNil())
		app.autosaver = nil
	}
	if app.redis != nil {
		errs.Add(NewComponentError("store", "close redis", app.redis.Close()).orNil())
		app.redis = nil
	}

	// 4. Release Lua states
	for _, sc := range app.scripts {
		sc.Close()
	}
	app.scripts = nil

	if err := errs.AsError(); err != nil {
		if app.logger != nil {
			app.logger.Error("shutdown: %v", err)
		}
		return err
	}
	return nil
}
