// Package match locates search terms in text for highlighting and
// performs find/replace.
//
// Terms are regular expressions (Go RE2 syntax) matched case-insensitively.
// User-supplied terms are untrusted: a term that fails to compile yields a
// *PatternError and never a panic.
//
// # Layering
//
// A Spec is applied term by term, in declaration order. Each term only
// searches the plain runs left over by the terms before it, so an earlier
// term claims its text first and a later term can never match across a
// highlighted run. Because every plain run is searched on its own, anchors
// such as ^ and $ also match at run boundaries created by earlier terms.
// Reordering terms can therefore change the result.
package match

import (
	"regexp"
	"strings"
)

// DefaultColor is used for terms declared without a color.
const DefaultColor = "yellow"

// Term is one highlight pattern with its color token.
type Term struct {
	Pattern string
	Color   string
}

// Spec is an ordered list of highlight terms.
type Spec []Term

// NewSpec pairs terms with colors by index. Terms without a color, or with
// an empty one, get DefaultColor. Empty terms are dropped.
func NewSpec(terms, colors []string) Spec {
	var spec Spec
	for i, t := range terms {
		if t == "" {
			continue
		}
		color := DefaultColor
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}
		spec = append(spec, Term{Pattern: t, Color: color})
	}
	return spec
}

// ParseSpec builds a Spec from comma-separated term and color lists.
// Entries are trimmed and empty entries are skipped before terms and colors
// are paired by position.
func ParseSpec(terms, colors string) Spec {
	return NewSpec(splitList(terms), splitList(colors))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Patterns returns the term patterns in order.
func (s Spec) Patterns() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Pattern
	}
	return out
}

// Compile compiles a single term into a case-insensitive expression.
func Compile(term string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + term)
	if err != nil {
		return nil, &PatternError{Term: term, Err: err}
	}
	return re, nil
}

// Span is one located occurrence. Start and End are byte offsets into the
// text; Term indexes the Spec entry that produced it.
type Span struct {
	Start int
	End   int
	Term  int
}

// Segment is a run of text, either plain (Term < 0) or highlighted.
type Segment struct {
	Text  string
	Start int
	End   int
	Term  int
	Color string
}

// Highlighted reports whether the segment belongs to a term.
func (s Segment) Highlighted() bool {
	return s.Term >= 0
}

// Result is the outcome of highlighting a text.
type Result struct {
	Segments []Segment
	Spans    []Span
}

// Highlighter applies a compiled Spec.
type Highlighter struct {
	spec Spec
	res  []*regexp.Regexp
}

// NewHighlighter compiles every term of spec. The first term that fails to
// compile is reported as a *PatternError.
func NewHighlighter(spec Spec) (*Highlighter, error) {
	h := &Highlighter{
		spec: append(Spec(nil), spec...),
		res:  make([]*regexp.Regexp, len(spec)),
	}
	for i, t := range spec {
		re, err := Compile(t.Pattern)
		if err != nil {
			return nil, err
		}
		h.res[i] = re
	}
	return h, nil
}

// Spec returns a copy of the highlighter's spec.
func (h *Highlighter) Spec() Spec {
	return append(Spec(nil), h.spec...)
}

// Apply splits text into alternating plain and highlighted segments.
// The segments cover text exactly and in order; empty plain runs are omitted.
func (h *Highlighter) Apply(text string) Result {
	var segs []Segment
	if text != "" {
		segs = []Segment{{Text: text, Start: 0, End: len(text), Term: -1}}
	}

	for ti, re := range h.res {
		next := make([]Segment, 0, len(segs))
		for _, seg := range segs {
			if seg.Highlighted() {
				next = append(next, seg)
				continue
			}
			next = appendSplit(next, seg, re, ti, h.spec[ti].Color)
		}
		segs = next
	}

	res := Result{Segments: segs}
	for _, seg := range segs {
		if seg.Highlighted() {
			res.Spans = append(res.Spans, Span{Start: seg.Start, End: seg.End, Term: seg.Term})
		}
	}
	return res
}

// appendSplit splits a plain segment around the matches of re.
// Zero-width matches are ignored.
func appendSplit(dst []Segment, seg Segment, re *regexp.Regexp, term int, color string) []Segment {
	last := 0
	for _, loc := range re.FindAllStringIndex(seg.Text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > last {
			dst = append(dst, plain(seg, last, loc[0]))
		}
		dst = append(dst, Segment{
			Text:  seg.Text[loc[0]:loc[1]],
			Start: seg.Start + loc[0],
			End:   seg.Start + loc[1],
			Term:  term,
			Color: color,
		})
		last = loc[1]
	}
	if last < len(seg.Text) {
		dst = append(dst, plain(seg, last, len(seg.Text)))
	}
	return dst
}

func plain(seg Segment, from, to int) Segment {
	return Segment{
		Text:  seg.Text[from:to],
		Start: seg.Start + from,
		End:   seg.Start + to,
		Term:  -1,
	}
}

// Highlight compiles spec and applies it to text.
func Highlight(text string, spec Spec) (Result, error) {
	h, err := NewHighlighter(spec)
	if err != nil {
		return Result{}, err
	}
	return h.Apply(text), nil
}

// Replace substitutes every case-insensitive match of term in text using
// ReplaceAll. An empty term leaves text unchanged.
func Replace(text, term, replacement string) (string, error) {
	if term == "" {
		return text, nil
	}
	re, err := Compile(term)
	if err != nil {
		return text, err
	}
	return ReplaceAll(re, text, replacement), nil
}

// ReplaceAll replaces every match of re in text with replacement.
//
// In the replacement, $$ is a dollar sign, $& is the whole match and $n or
// $nn is capture group n when the pattern has that group. Any other dollar
// sequence, such as $USD or $5 without a fifth group, is copied literally.
func ReplaceAll(re *regexp.Regexp, text, replacement string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}
	if !strings.Contains(replacement, "$") {
		return re.ReplaceAllLiteralString(text, replacement)
	}

	groups := re.NumSubexp()
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		expand(&b, replacement, text, m, groups)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// expand writes replacement for the match m to b.
func expand(b *strings.Builder, replacement, text string, m []int, groups int) {
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 == len(replacement) {
			b.WriteByte(c)
			continue
		}
		next := replacement[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(text[m[0]:m[1]])
			i++
		case isDigit(next):
			n, width := groupRef(replacement[i+1:], groups)
			if width == 0 {
				b.WriteByte(c)
				continue
			}
			if start := m[2*n]; start >= 0 {
				b.WriteString(text[start:m[2*n+1]])
			}
			i += width
		default:
			b.WriteByte(c)
		}
	}
}

// groupRef parses the group number at the start of s, preferring two digits
// when that group exists. width is 0 when s names no existing group.
func groupRef(s string, groups int) (n, width int) {
	if len(s) >= 2 && isDigit(s[1]) {
		if two := int(s[0]-'0')*10 + int(s[1]-'0'); two >= 1 && two <= groups {
			return two, 2
		}
	}
	if one := int(s[0] - '0'); one >= 1 && one <= groups {
		return one, 1
	}
	return 0, 0
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Count returns the number of non-empty matches of term in text.
func Count(text, term string) (int, error) {
	if term == "" {
		return 0, nil
	}
	re, err := Compile(term)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] != loc[1] {
			n++
		}
	}
	return n, nil
}
