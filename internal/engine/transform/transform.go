// Package transform provides named whole-document text transformations.
//
// A transformation is a pure function from the current text to the new text.
// The built-in set covers case changes, whitespace cleanup and word sorting;
// scripted transformations can be added to a Registry at runtime.
package transform

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownTransform is returned when a transformation name is not registered.
var ErrUnknownTransform = errors.New("unknown transform")

// Func transforms a whole document.
type Func func(text string) (string, error)

// Names of the built-in transformations.
const (
	Upper    = "upper"
	Lower    = "lower"
	Title    = "title"
	Sentence = "sentence"
	Spaces   = "spaces"
	Lines    = "lines"
	Sort     = "sort"
)

var (
	sentenceStart = regexp.MustCompile(`(?i)(^|[.!?।]\s+)([a-z])`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	lineBreakRun  = regexp.MustCompile(`\n+`)
)

// ToUpper upper-cases text with full Unicode case mapping.
func ToUpper(text string) string {
	return cases.Upper(language.Und).String(text)
}

// ToLower lower-cases text with full Unicode case mapping.
func ToLower(text string) string {
	return cases.Lower(language.Und).String(text)
}

// ToTitle lower-cases text, then upper-cases the first character of every
// piece between single spaces. Other whitespace is not a word separator.
func ToTitle(text string) string {
	parts := strings.Split(ToLower(text), " ")
	for i, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = ToUpper(string(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}

// ToSentence upper-cases a letter at the start of text or after a sentence
// terminator followed by whitespace.
func ToSentence(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range sentenceStart.FindAllStringSubmatchIndex(text, -1) {
		// m[4]:m[5] is the letter group.
		b.WriteString(text[last:m[4]])
		b.WriteString(ToUpper(text[m[4]:m[5]]))
		last = m[5]
	}
	b.WriteString(text[last:])
	return b.String()
}

// CollapseSpaces replaces every whitespace run with one space and trims.
func CollapseSpaces(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// RemoveLineBreaks replaces every run of newlines with one space.
func RemoveLineBreaks(text string) string {
	return lineBreakRun.ReplaceAllString(text, " ")
}

// SortWords splits text on whitespace, sorts the pieces with
// language-neutral collation and joins them with single spaces.
func SortWords(text string) string {
	words := strings.Fields(text)
	c := collate.New(language.Und)
	sort.SliceStable(words, func(i, j int) bool {
		return c.CompareString(words[i], words[j]) < 0
	})
	return strings.Join(words, " ")
}

func pure(fn func(string) string) Func {
	return func(text string) (string, error) {
		return fn(text), nil
	}
}

// Registry maps names to transformations. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry holding the built-in transformations.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register(Upper, pure(ToUpper))
	r.Register(Lower, pure(ToLower))
	r.Register(Title, pure(ToTitle))
	r.Register(Sentence, pure(ToSentence))
	r.Register(Spaces, pure(CollapseSpaces))
	r.Register(Lines, pure(RemoveLineBreaks))
	r.Register(Sort, pure(SortWords))
	return r
}

// Register adds or replaces a transformation.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the transformation registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Apply runs the named transformation on text.
func (r *Registry) Apply(name, text string) (string, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return text, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	return fn(text)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
