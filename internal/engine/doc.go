// Package engine provides the text session at the core of textdesk.
//
// The engine package serves as the main facade, combining the tokenizer,
// statistics, undo/redo history and match engine into a single session
// object. Every edit path (typing, transformations, find/replace, dictation)
// goes through one mutation path so history is recorded consistently.
//
// # Thread Safety
//
// All Engine operations are thread-safe. The current text, the undo/redo
// stacks and the revision counter are updated together under one lock, so
// edits arriving from several producers (a dictation stream, an autosave
// loader, a UI) are serialized.
//
// # Basic Usage
//
//	e := engine.New()
//
//	e.SetText("Hello world")          // history-generating edit
//	e.FindAndReplace("world", "Go")    // "Hello Go", also undoable
//	e.Undo()                           // "Hello world"
//	e.Redo()                           // "Hello Go"
//
//	stats := e.Statistics()            // cached per revision
//	freq := e.Frequencies()
//
// # Undo/Redo
//
// The session keeps at most 100 undo snapshots by default (see
// WithMaxUndoEntries). Undo and Redo return ErrNothingToUndo and
// ErrNothingToRedo when there is nothing to do; these are warnings, the
// session is left exactly as it was:
//
//	if err := e.Undo(); engine.IsNoOp(err) {
//	    // nothing happened
//	}
//
// Reset and Load bypass history and clear it; neither can be undone.
//
// # Highlighting
//
// A highlight spec is an ordered list of case-insensitive patterns with
// colors. Search seeds the spec with a single term without touching the
// text:
//
//	e.SetHighlight(engine.HighlightSpec{
//	    {Pattern: "error", Color: "red"},
//	    {Pattern: "warn(ing)?", Color: "orange"},
//	})
//	for _, seg := range e.HighlightedSegments().Segments {
//	    // alternate plain and highlighted runs
//	}
//
// Malformed patterns are returned as *PatternError and leave the session
// unchanged.
//
// # Observers
//
// OnChange registers a callback invoked after every committed change, with
// the new revision, the text and the edit source. Autosave uses it.
//
// # Error Handling
//
// The package defines several error values:
//
//   - ErrNothingToUndo: Undo stack is empty
//   - ErrNothingToRedo: Redo stack is empty
//   - ErrInvalidPattern: a search, highlight or replace term did not compile
//   - ErrUnknownTransform: no transformation registered under the name
//   - ErrTransformFailed: the transformation returned an error
package engine
