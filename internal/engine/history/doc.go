// Package history provides undo/redo over full-text snapshots.
//
// Every history-generating edit records the text as it was before the edit:
//
//	h := history.NewHistory(100) // keep at most 100 undo snapshots
//
//	h.RecordBeforeMutation(current)
//	current = edited
//
//	current, err = h.Undo(current) // err == ErrNothingToUndo when empty
//	current, err = h.Redo(current) // err == ErrNothingToRedo when empty
//
// # Capacity
//
// The undo stack is bounded; recording beyond capacity drops the oldest
// snapshot. The redo stack is unbounded but is cleared by every
// RecordBeforeMutation, so a fresh edit after an undo makes redo a no-op.
//
// # Reset
//
// Clear empties both stacks without recording anything, which makes a
// reset impossible to undo.
package history
