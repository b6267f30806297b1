package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoTransform is returned when a script does not define a transform function.
	ErrNoTransform = errors.New("script does not define a transform function")

	// ErrBadReturn is returned when a transform function does not return a string.
	ErrBadReturn = errors.New("transform must return a string")
)
