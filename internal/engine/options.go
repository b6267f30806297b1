package engine

import (
	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/engine/transform"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 100
	DefaultHighlightColor = match.DefaultColor
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine. Initial content is
// not undoable.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.text = content
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithDefaultColor sets the highlight color used by Search.
func WithDefaultColor(color string) Option {
	return func(e *Engine) {
		if color != "" {
			e.defaultColor = color
		}
	}
}

// WithTransforms sets the transformation registry used by Transform.
func WithTransforms(r *transform.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.transforms = r
		}
	}
}

// WithID sets the session identifier instead of generating one.
func WithID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.id = id
		}
	}
}
