package store

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/textdesk/internal/engine"
)

// DefaultDebounce is how long edits must be quiet before a save.
const DefaultDebounce = 500 * time.Millisecond

// DefaultSaveTimeout bounds a single background save.
const DefaultSaveTimeout = 5 * time.Second

// ChangeNotifier is the part of the session an Autosaver observes.
type ChangeNotifier interface {
	OnChange(fn func(engine.Change)) (unsubscribe func())
}

// Autosaver saves the latest session text after edits settle.
type Autosaver struct {
	store       Store
	debounce    time.Duration
	saveTimeout time.Duration
	onError     func(error)
	onSave      func(rev uint64)

	unsubscribe func()

	// saveMu serializes saves so an older text never overwrites a newer one.
	saveMu sync.Mutex

	mu         sync.Mutex
	timer      *time.Timer
	pending    *Record
	pendingRev uint64
	latestRev  uint64
	closed     bool
	saves      int
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDebounce sets the quiet window. Non-positive values save on every change.
func WithDebounce(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		a.debounce = d
	}
}

// WithSaveTimeout bounds each background save.
func WithSaveTimeout(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.saveTimeout = d
		}
	}
}

// WithErrorHandler receives errors from background saves.
func WithErrorHandler(fn func(error)) AutosaveOption {
	return func(a *Autosaver) {
		a.onError = fn
	}
}

// WithSaveHandler is called with the saved revision after each successful save.
func WithSaveHandler(fn func(rev uint64)) AutosaveOption {
	return func(a *Autosaver) {
		a.onSave = fn
	}
}

// NewAutosaver subscribes to src and saves through st.
func NewAutosaver(src ChangeNotifier, st Store, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		store:       st,
		debounce:    DefaultDebounce,
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.unsubscribe = src.OnChange(a.handleChange)
	return a
}

func (a *Autosaver) handleChange(ch engine.Change) {
	a.mu.Lock()
	// Observers run outside the engine lock, so changes can arrive out of order.
	if a.closed || ch.Revision < a.latestRev {
		a.mu.Unlock()
		return
	}
	a.latestRev = ch.Revision
	a.pending = &Record{Text: ch.Text}
	a.pendingRev = ch.Revision

	if a.debounce <= 0 {
		a.mu.Unlock()
		a.background()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.background)
	a.mu.Unlock()
}

func (a *Autosaver) background() {
	ctx, cancel := context.WithTimeout(context.Background(), a.saveTimeout)
	defer cancel()
	if err := a.savePending(ctx); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// Flush saves any pending text immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	return a.savePending(ctx)
}

func (a *Autosaver) savePending(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	rec, rev := a.pending, a.pendingRev
	a.pending = nil
	a.mu.Unlock()

	if rec == nil {
		return nil
	}
	if err := a.store.Save(ctx, *rec); err != nil {
		// Keep the text for the next attempt unless a newer change arrived.
		a.mu.Lock()
		if a.pending == nil {
			a.pending, a.pendingRev = rec, rev
		}
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	a.saves++
	a.mu.Unlock()
	if a.onSave != nil {
		a.onSave(rev)
	}
	return nil
}

// Pending reports whether a change is waiting to be saved.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Saves returns the number of successful saves.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

// Close stops observing the session and flushes the pending write.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.unsubscribe()
	return a.Flush(ctx)
}
