package match

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern is matched by every PatternError via errors.Is.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError reports a search or highlight term that does not compile.
type PatternError struct {
	Term string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Term, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidPattern.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
