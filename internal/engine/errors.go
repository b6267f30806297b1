package engine

import (
	"errors"

	"github.com/dshills/textdesk/internal/engine/history"
	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/engine/transform"
)

// Errors returned by engine operations.
var (
	// ErrNothingToUndo indicates the undo stack is empty. The session is unchanged.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty. The session is unchanged.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrInvalidPattern matches any PatternError returned by search,
	// highlight or replace.
	ErrInvalidPattern = match.ErrInvalidPattern

	// ErrUnknownTransform indicates a transformation name is not registered.
	ErrUnknownTransform = transform.ErrUnknownTransform

	// ErrTransformFailed wraps an error returned by a transformation.
	ErrTransformFailed = errors.New("transform failed")
)

// PatternError is re-exported so callers need not import the match package.
type PatternError = match.PatternError

// IsNoOp reports whether err only signals that undo or redo had nothing to do.
func IsNoOp(err error) bool {
	return errors.Is(err, ErrNothingToUndo) || errors.Is(err, ErrNothingToRedo)
}
