// Package token splits document text into words, sentences and paragraphs.
//
// Every splitter returns an iter.Seq so callers can stream tokens without
// materializing a slice; the sequences are restartable and may be ranged over
// any number of times.
//
//	for w := range token.Words("Hello, world") {
//	    fmt.Println(w) // "Hello", "world"
//	}
//
// # Rules
//
//   - Words are maximal runs of word characters (see IsWordRune).
//   - Sentences are separated by runs of '.', '!', '?', U+0964 (danda) or '|'.
//   - Paragraphs are separated by runs of '\n'.
//
// Sentence and paragraph tokens are trimmed of surrounding whitespace and
// empty tokens are dropped. Empty input yields empty sequences.
package token

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Danda is the Bengali/Devanagari sentence terminator.
const Danda = '।'

// IsWordRune reports whether r belongs inside a word: any Unicode letter or
// number, an apostrophe, a backtick or a hyphen.
func IsWordRune(r rune) bool {
	switch r {
	case '\'', '`', '-':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsSentenceTerminator reports whether r ends a sentence.
func IsSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '|', Danda:
		return true
	}
	return false
}

func isLineBreak(r rune) bool {
	return r == '\n'
}

// Words returns the word tokens of text in order.
func Words(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if IsWordRune(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(text[start:i]) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}

// Sentences returns the trimmed, non-empty sentence tokens of text.
func Sentences(text string) iter.Seq[string] {
	return splitTrimmed(text, IsSentenceTerminator)
}

// Paragraphs returns the trimmed, non-empty paragraph tokens of text.
func Paragraphs(text string) iter.Seq[string] {
	return splitTrimmed(text, isLineBreak)
}

// splitTrimmed splits text on runs of separator runes, trimming each piece
// and skipping the ones that are empty after trimming.
func splitTrimmed(text string, sep func(rune) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for start <= len(text) {
			end := strings.IndexFunc(text[start:], sep)
			var piece string
			if end < 0 {
				piece = text[start:]
			} else {
				piece = text[start : start+end]
			}

			if p := strings.TrimSpace(piece); p != "" {
				if !yield(p) {
					return
				}
			}

			if end < 0 {
				return
			}

			// Skip the whole separator run.
			next := start + end
			for next < len(text) {
				r, size := utf8.DecodeRuneInString(text[next:])
				if !sep(r) {
					break
				}
				next += size
			}
			start = next
		}
	}
}

// Count returns the number of tokens in seq.
func Count(seq iter.Seq[string]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// Collect returns the tokens of seq as a slice.
func Collect(seq iter.Seq[string]) []string {
	var out []string
	for s := range seq {
		out = append(out, s)
	}
	return out
}
