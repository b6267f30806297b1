package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/textdesk/internal/engine/history"
	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/engine/stats"
	"github.com/dshills/textdesk/internal/engine/transform"
)

// Re-export commonly used types for convenience.
type (
	// Statistics summarizes the current text.
	Statistics = stats.Statistics

	// FrequencyTable maps normalized words to counts.
	FrequencyTable = stats.FrequencyTable

	// HighlightSpec is an ordered list of highlight terms.
	HighlightSpec = match.Spec

	// HighlightTerm is one entry of a HighlightSpec.
	HighlightTerm = match.Term

	// Highlight is the segmented view of the current text.
	Highlight = match.Result

	// Segment is one plain or highlighted run.
	Segment = match.Segment

	// MatchSpan is one located occurrence.
	MatchSpan = match.Span
)

// Source identifies the edit path that produced a change.
type Source string

// Edit sources.
const (
	SourceTyping    Source = "typing"
	SourceTransform Source = "transform"
	SourceReplace   Source = "replace"
	SourceDictation Source = "dictation"
	SourceUndo      Source = "undo"
	SourceRedo      Source = "redo"
	SourceReset     Source = "reset"
	SourceLoad      Source = "load"
)

// EditOptions controls how ApplyEdit commits text.
type EditOptions struct {
	// RecordHistory snapshots the pre-edit text so the edit can be undone.
	RecordHistory bool

	// Source is reported to change observers.
	Source Source
}

// Change describes a committed text change.
type Change struct {
	Revision uint64
	Text     string
	Source   Source
}

// highlightState caches the highlight result for a revision and spec generation.
type highlightState struct {
	mu     sync.Mutex
	valid  bool
	rev    uint64
	gen    uint64
	result match.Result
}

// Engine is a text session: it owns the current text, its undo/redo history
// and the live highlight spec, and derives statistics and highlights from
// them on demand.
//
// All operations are thread-safe. The text, the history stacks and the
// revision counter are updated together under a single lock.
type Engine struct {
	mu sync.RWMutex

	id       string
	text     string
	revision uint64

	// Core components
	history    *history.History
	transforms *transform.Registry

	// Highlighting
	spec         match.Spec
	highlighter  *match.Highlighter
	specGen      uint64
	defaultColor string

	// Derived data caches
	stats     stats.Cache
	highlight highlightState

	// Observers
	listenersMu sync.Mutex
	listeners   map[int]func(Change)
	nextID      int

	// Configuration
	maxUndoEntries int
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxUndoEntries: DefaultMaxUndoEntries,
		defaultColor:   DefaultHighlightColor,
		listeners:      make(map[int]func(Change)),
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(e)
	}

	if e.id == "" {
		e.id = uuid.New().String()
	}
	if e.transforms == nil {
		e.transforms = transform.NewRegistry()
	}
	e.history = history.NewHistory(e.maxUndoEntries)

	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// ID returns the session identifier.
func (e *Engine) ID() string {
	return e.id
}

// Text returns the current text.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Revision returns the revision counter. It increases on every committed
// change, including undo, redo, reset and load.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// snapshot returns the text and revision under one read lock.
func (e *Engine) snapshot() (string, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text, e.revision
}

// Statistics returns the statistics of the current text. Results are cached
// until the revision changes.
func (e *Engine) Statistics() Statistics {
	text, rev := e.snapshot()
	s, _ := e.stats.Get(rev, text)
	return s
}

// Frequencies returns the word frequency table of the current text.
func (e *Engine) Frequencies() *FrequencyTable {
	text, rev := e.snapshot()
	_, ft := e.stats.Get(rev, text)
	return ft
}

// ============================================================================
// Edit Operations
// ============================================================================

// ApplyEdit commits text as the new current text and returns the new
// revision. With RecordHistory set the previous text is recorded first and
// the redo stack is cleared.
func (e *Engine) ApplyEdit(text string, opts EditOptions) uint64 {
	e.mu.Lock()
	ch := e.applyLocked(text, opts)
	e.mu.Unlock()

	e.notify(ch)
	return ch.Revision
}

// SetText is a history-generating edit, as produced by typing.
func (e *Engine) SetText(text string) uint64 {
	return e.ApplyEdit(text, EditOptions{RecordHistory: true, Source: SourceTyping})
}

// AppendDictation appends one finalized dictation chunk followed by a space.
// Blank chunks are ignored and the current revision is returned.
func (e *Engine) AppendDictation(chunk string) uint64 {
	if strings.TrimSpace(chunk) == "" {
		return e.Revision()
	}

	e.mu.Lock()
	ch := e.applyLocked(e.text+chunk+" ", EditOptions{RecordHistory: true, Source: SourceDictation})
	e.mu.Unlock()

	e.notify(ch)
	return ch.Revision
}

// Transform applies the named transformation to the whole text as a
// history-generating edit. On failure the text and history are unchanged.
func (e *Engine) Transform(name string) error {
	fn, ok := e.transforms.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}

	e.mu.Lock()
	out, err := fn(e.text)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s: %v", ErrTransformFailed, name, err)
	}
	ch := e.applyLocked(out, EditOptions{RecordHistory: true, Source: SourceTransform})
	e.mu.Unlock()

	e.notify(ch)
	return nil
}

// Transforms returns the transformation registry.
func (e *Engine) Transforms() *transform.Registry {
	return e.transforms
}

// FindAndReplace replaces every case-insensitive match of term with
// replacement as a history-generating edit. The replacement is expanded by
// match.ReplaceAll. An empty term does nothing.
// A malformed term returns a *PatternError and leaves the session unchanged.
func (e *Engine) FindAndReplace(term, replacement string) error {
	if term == "" {
		return nil
	}
	re, err := match.Compile(term)
	if err != nil {
		return err
	}

	e.mu.Lock()
	out := match.ReplaceAll(re, e.text, replacement)
	ch := e.applyLocked(out, EditOptions{RecordHistory: true, Source: SourceReplace})
	e.mu.Unlock()

	e.notify(ch)
	return nil
}

// Undo restores the text from before the most recent recorded edit.
// Returns ErrNothingToUndo, with no state change, when there is nothing to undo.
func (e *Engine) Undo() error {
	e.mu.Lock()
	prev, err := e.history.Undo(e.text)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	ch := e.commitLocked(prev, SourceUndo)
	e.mu.Unlock()

	e.notify(ch)
	return nil
}

// Redo re-applies the most recently undone text.
// Returns ErrNothingToRedo, with no state change, when there is nothing to redo.
func (e *Engine) Redo() error {
	e.mu.Lock()
	next, err := e.history.Redo(e.text)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	ch := e.commitLocked(next, SourceRedo)
	e.mu.Unlock()

	e.notify(ch)
	return nil
}

// Reset clears the text, both history stacks and the highlight spec.
// A reset is not recorded and cannot be undone.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	ch := e.commitLocked("", SourceReset)
	e.mu.Unlock()

	e.notify(ch)
}

// Load replaces the session state with previously saved text, as a reset
// followed by a non-history edit.
func (e *Engine) Load(text string) {
	e.mu.Lock()
	e.resetLocked()
	ch := e.commitLocked(text, SourceLoad)
	e.mu.Unlock()

	e.notify(ch)
}

func (e *Engine) resetLocked() {
	e.history.Clear()
	e.spec = nil
	e.highlighter = nil
	e.specGen++
}

// applyLocked is the single mutation path for edits: it records the
// pre-edit text when asked to, then commits.
func (e *Engine) applyLocked(text string, opts EditOptions) Change {
	if opts.RecordHistory {
		e.history.RecordBeforeMutation(e.text)
	}
	return e.commitLocked(text, opts.Source)
}

// commitLocked sets the current text and bumps the revision.
func (e *Engine) commitLocked(text string, src Source) Change {
	e.text = text
	e.revision++
	return Change{Revision: e.revision, Text: text, Source: src}
}

// ============================================================================
// History
// ============================================================================

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo operations available.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo operations available.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// SetMaxUndoEntries changes the undo capacity, dropping the oldest entries
// if the stack is larger.
func (e *Engine) SetMaxUndoEntries(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.SetMaxEntries(max)
}

// ============================================================================
// Highlighting
// ============================================================================

// SetHighlight replaces the live highlight spec. A malformed term returns a
// *PatternError and keeps the previous spec.
func (e *Engine) SetHighlight(spec HighlightSpec) error {
	var h *match.Highlighter
	if len(spec) > 0 {
		var err error
		if h, err = match.NewHighlighter(spec); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if h != nil {
		e.spec = h.Spec()
	} else {
		e.spec = nil
	}
	e.highlighter = h
	e.specGen++
	return nil
}

// Search seeds the highlight spec with term in the default color. It never
// changes the text or the history. An empty term does nothing.
func (e *Engine) Search(term string) error {
	if term == "" {
		return nil
	}
	return e.SetHighlight(HighlightSpec{{Pattern: term, Color: e.DefaultColor()}})
}

// HighlightSpec returns a copy of the live highlight spec.
func (e *Engine) HighlightSpec() HighlightSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append(HighlightSpec(nil), e.spec...)
}

// DefaultColor returns the color Search uses.
func (e *Engine) DefaultColor() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultColor
}

// SetDefaultColor changes the color Search uses. Empty colors are ignored.
func (e *Engine) SetDefaultColor(color string) {
	if color == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultColor = color
}

// HighlightedSegments returns the current text split into plain and
// highlighted runs under the live spec. Results are cached until the text
// or the spec changes.
func (e *Engine) HighlightedSegments() Highlight {
	e.mu.RLock()
	text, rev, gen, h := e.text, e.revision, e.specGen, e.highlighter
	e.mu.RUnlock()

	hs := &e.highlight
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.valid && hs.rev == rev && hs.gen == gen {
		return hs.result
	}

	if h != nil {
		hs.result = h.Apply(text)
	} else {
		hs.result = plainHighlight(text)
	}
	hs.rev, hs.gen, hs.valid = rev, gen, true
	return hs.result
}

func plainHighlight(text string) Highlight {
	if text == "" {
		return Highlight{}
	}
	return Highlight{Segments: []Segment{{Text: text, Start: 0, End: len(text), Term: -1}}}
}

// ============================================================================
// Observers
// ============================================================================

// OnChange registers fn to be called after every committed change. Calls
// happen outside the engine lock, on the goroutine that made the change.
// The returned function unregisters fn.
func (e *Engine) OnChange(fn func(Change)) (unsubscribe func()) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *Engine) notify(ch Change) {
	e.listenersMu.Lock()
	fns := make([]func(Change), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
