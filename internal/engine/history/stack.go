package history

import (
	"errors"
	"sync"
	"time"
)

// DefaultMaxEntries is the undo capacity used when none is configured.
const DefaultMaxEntries = 100

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry is a full-text snapshot with metadata.
type entry struct {
	text      string
	timestamp time.Time
}

// History manages undo/redo state over full-text snapshots.
//
// The undo stack holds the text as it was before each recorded mutation,
// newest last. The redo stack holds texts displaced by Undo, with the next
// one to redo last.
type History struct {
	mu sync.Mutex

	undoStack []entry
	redoStack []entry

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager that keeps at most maxEntries
// undo snapshots.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// RecordBeforeMutation pushes the pre-edit text onto the undo stack.
// Clears the redo stack.
func (h *History) RecordBeforeMutation(current string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pushLocked(current)
	h.redoStack = nil
}

// pushLocked appends to the undo stack and evicts the oldest entries
// beyond capacity.
func (h *History) pushLocked(text string) {
	h.undoStack = append(h.undoStack, entry{
		text:      text,
		timestamp: time.Now(),
	})

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the most recent snapshot and returns it as the new current
// text. current is saved so Redo can restore it.
// Returns ErrNothingToUndo, with no state change, when the undo stack is empty.
func (h *History) Undo(current string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return current, ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry{text: current, timestamp: time.Now()})
	return e.text, nil
}

// Redo pops the next redo snapshot and returns it as the new current text.
// current is recorded on the undo stack, subject to capacity, without
// clearing the remaining redo entries.
// Returns ErrNothingToRedo, with no state change, when the redo stack is empty.
func (h *History) Redo(current string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return current, ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.pushLocked(current)
	return e.text, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
}

// PeekUndo returns info about the next undo snapshot without removing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo snapshot without removing it.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// Info describes a stored snapshot.
type Info struct {
	Length    int       // Length of the snapshot text in bytes
	Timestamp time.Time // When the snapshot was taken
}

func (e entry) info() Info {
	return Info{Length: len(e.text), Timestamp: e.timestamp}
}
