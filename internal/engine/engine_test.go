package engine

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	e := New()
	if e.Text() != "" {
		t.Errorf("Text() = %q, want empty", e.Text())
	}
	if e.Revision() != 0 {
		t.Errorf("Revision() = %d, want 0", e.Revision())
	}
	if e.ID() == "" {
		t.Error("ID() should not be empty")
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("new engine should have no history")
	}
}

func TestNewWithOptions(t *testing.T) {
	e := New(WithContent("hello"), WithID("s1"), WithDefaultColor("green"), WithMaxUndoEntries(3))
	if e.Text() != "hello" {
		t.Errorf("Text() = %q, want %q", e.Text(), "hello")
	}
	if e.ID() != "s1" {
		t.Errorf("ID() = %q, want s1", e.ID())
	}
	if e.DefaultColor() != "green" {
		t.Errorf("DefaultColor() = %q, want green", e.DefaultColor())
	}
	if e.CanUndo() {
		t.Error("initial content should not be undoable")
	}

	for i := 0; i < 5; i++ {
		e.SetText(fmt.Sprint(i))
	}
	if e.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", e.UndoCount())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.SetText("a")
	if b.Text() != "" || b.CanUndo() {
		t.Error("sessions share state")
	}
	if a.ID() == b.ID() {
		t.Error("sessions share an ID")
	}
}

func TestApplyEdit(t *testing.T) {
	e := New()

	rev := e.ApplyEdit("one", EditOptions{RecordHistory: true, Source: SourceTyping})
	if rev != 1 || e.Revision() != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}
	if !e.CanUndo() {
		t.Error("recorded edit should be undoable")
	}

	e.ApplyEdit("two", EditOptions{RecordHistory: false})
	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d after unrecorded edit, want 1", e.UndoCount())
	}
	if e.Text() != "two" {
		t.Errorf("Text() = %q, want two", e.Text())
	}
}

func TestUndoRedo(t *testing.T) {
	e := New()
	e.SetText("a")
	e.SetText("ab")
	e.SetText("abc")

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.Text() != "ab" {
		t.Errorf("Text() = %q, want ab", e.Text())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := e.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if e.Text() != "ab" {
		t.Errorf("Text() = %q, want ab", e.Text())
	}
	if e.Revision() != 6 {
		t.Errorf("Revision() = %d, want 6", e.Revision())
	}
}

func TestUndoRedoEmptyIsNoOp(t *testing.T) {
	e := New(WithContent("keep"))

	err := e.Undo()
	if !errors.Is(err, ErrNothingToUndo) || !IsNoOp(err) {
		t.Errorf("Undo err = %v, want ErrNothingToUndo", err)
	}
	err = e.Redo()
	if !errors.Is(err, ErrNothingToRedo) || !IsNoOp(err) {
		t.Errorf("Redo err = %v, want ErrNothingToRedo", err)
	}
	if e.Text() != "keep" || e.Revision() != 0 {
		t.Errorf("no-op changed state: text=%q rev=%d", e.Text(), e.Revision())
	}
}

func TestUndoRedoInverseLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.StringMatching(`[a-zA-Z .!?\n]{0,20}`).Draw(t, "initial")
		e := New(WithContent(initial))

		n := rapid.IntRange(1, 40).Draw(t, "edits")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				e.SetText(rapid.StringMatching(`[a-z ]{0,15}`).Draw(t, "text"))
			case 1:
				e.AppendDictation(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "chunk"))
			case 2:
				if err := e.FindAndReplace("a", "b"); err != nil {
					t.Fatal(err)
				}
			case 3:
				if err := e.Transform("upper"); err != nil {
					t.Fatal(err)
				}
			}
		}
		final := e.Text()

		for i := 0; i < n; i++ {
			if err := e.Undo(); err != nil {
				t.Fatalf("undo %d: %v", i, err)
			}
		}
		if e.Text() != initial {
			t.Fatalf("after undos Text() = %q, want %q", e.Text(), initial)
		}
		if err := e.Undo(); !IsNoOp(err) {
			t.Fatalf("extra undo err = %v, want no-op", err)
		}

		for i := 0; i < n; i++ {
			if err := e.Redo(); err != nil {
				t.Fatalf("redo %d: %v", i, err)
			}
		}
		if e.Text() != final {
			t.Fatalf("after redos Text() = %q, want %q", e.Text(), final)
		}
	})
}

func TestHistoryBound(t *testing.T) {
	e := New()
	for i := 0; i < 250; i++ {
		e.SetText(fmt.Sprint(i))
	}

	undos := 0
	for e.Undo() == nil {
		undos++
	}
	if undos != 100 {
		t.Errorf("undo succeeded %d times, want 100", undos)
	}
}

func TestRedoInvalidation(t *testing.T) {
	e := New()
	e.SetText("a")
	e.SetText("b")
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	e.SetText("c")

	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo err = %v, want ErrNothingToRedo", err)
	}
	if e.Text() != "c" {
		t.Errorf("Text() = %q, want c", e.Text())
	}
}

func TestResetIsNotUndoable(t *testing.T) {
	e := New()
	e.SetText("a")
	e.SetText("b")
	if err := e.Search("b"); err != nil {
		t.Fatal(err)
	}

	e.Reset()

	if e.Text() != "" {
		t.Errorf("Text() = %q after reset, want empty", e.Text())
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo after reset err = %v, want ErrNothingToUndo", err)
	}
	if len(e.HighlightSpec()) != 0 {
		t.Error("reset should clear the highlight spec")
	}
}

func TestLoad(t *testing.T) {
	e := New()
	e.SetText("draft")
	e.Load("saved text")

	if e.Text() != "saved text" {
		t.Errorf("Text() = %q, want saved text", e.Text())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("Load should leave no history")
	}
}

func TestStatistics(t *testing.T) {
	e := New()
	e.SetText("Hello world. How are you?\n\nI am fine।")

	s := e.Statistics()
	if s.Sentences != 3 || s.Paragraphs != 2 || s.Words != 8 {
		t.Errorf("Statistics() = %+v, want 3 sentences, 2 paragraphs, 8 words", s)
	}
}

func TestStatisticsCachedPerRevision(t *testing.T) {
	e := New()
	e.SetText("a b c")

	e.Statistics()
	e.Statistics()
	e.Frequencies()
	if n := e.stats.Computes(); n != 1 {
		t.Errorf("computed %d times for one revision, want 1", n)
	}

	e.SetText("a b c d")
	if got := e.Statistics().Words; got != 4 {
		t.Errorf("Words = %d, want 4", got)
	}
	if n := e.stats.Computes(); n != 2 {
		t.Errorf("computed %d times after edit, want 2", n)
	}
}

func TestFrequencies(t *testing.T) {
	e := New()
	e.SetText("Cat cat CAT Café café")

	got := e.Frequencies().Map()
	want := map[string]int{"cat": 3, "Café": 1, "café": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Frequencies() = %v, want %v", got, want)
	}
}

func TestFindAndReplace(t *testing.T) {
	e := New()
	e.SetText("abcABC")

	if err := e.FindAndReplace("abc", "X"); err != nil {
		t.Fatalf("FindAndReplace: %v", err)
	}
	if e.Text() != "XX" {
		t.Errorf("Text() = %q, want XX", e.Text())
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if e.Text() != "abcABC" {
		t.Errorf("Text() after undo = %q, want abcABC", e.Text())
	}
}

func TestFindAndReplaceKeepsDollarText(t *testing.T) {
	tests := []struct {
		text, term, replacement, want string
	}{
		{"price in dollars", "dollars", "$USD", "price in $USD"},
		{"costs five", "five", "$5", "costs $5"},
		{"john smith", `(\w+) (\w+)`, "$2, $1", "smith, john"},
	}

	for _, tt := range tests {
		e := New(WithContent(tt.text))
		if err := e.FindAndReplace(tt.term, tt.replacement); err != nil {
			t.Fatalf("FindAndReplace(%q, %q): %v", tt.term, tt.replacement, err)
		}
		if got := e.Text(); got != tt.want {
			t.Errorf("FindAndReplace(%q, %q) on %q = %q, want %q", tt.term, tt.replacement, tt.text, got, tt.want)
		}
	}
}

func TestFindAndReplaceEmptyTerm(t *testing.T) {
	e := New()
	e.SetText("abc")
	rev := e.Revision()

	if err := e.FindAndReplace("", "x"); err != nil {
		t.Fatal(err)
	}
	if e.Revision() != rev || e.UndoCount() != 1 {
		t.Error("empty term should not edit")
	}
}

func TestFindAndReplaceInvalidPattern(t *testing.T) {
	e := New()
	e.SetText("abc")
	rev, undo := e.Revision(), e.UndoCount()

	err := e.FindAndReplace("(", "x")
	var pe *PatternError
	if !errors.As(err, &pe) || !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("err = %v, want *PatternError", err)
	}
	if e.Text() != "abc" || e.Revision() != rev || e.UndoCount() != undo {
		t.Error("failed replace changed the session")
	}
}

func TestSearchIsNonMutating(t *testing.T) {
	e := New()
	e.SetText("find the word")
	rev, undo := e.Revision(), e.UndoCount()
	before := e.HighlightedSegments()

	if err := e.Search("word"); err != nil {
		t.Fatal(err)
	}

	if e.Text() != "find the word" || e.Revision() != rev || e.UndoCount() != undo {
		t.Error("Search changed text or history")
	}
	after := e.HighlightedSegments()
	if reflect.DeepEqual(before, after) {
		t.Error("Search should change the highlighted segments")
	}
	if len(after.Spans) != 1 || after.Segments[1].Color != DefaultHighlightColor {
		t.Errorf("segments = %+v", after.Segments)
	}
	spec := e.HighlightSpec()
	if len(spec) != 1 || spec[0].Pattern != "word" {
		t.Errorf("HighlightSpec() = %+v", spec)
	}
}

func TestSearchInvalidPatternKeepsSpec(t *testing.T) {
	e := New(WithContent("aaa"))
	if err := e.Search("a"); err != nil {
		t.Fatal(err)
	}
	before := e.HighlightedSegments()

	if err := e.Search("[a"); !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("err = %v, want ErrInvalidPattern", err)
	}
	if got := e.HighlightSpec(); len(got) != 1 || got[0].Pattern != "a" {
		t.Errorf("HighlightSpec() = %+v, want previous spec", got)
	}
	if !reflect.DeepEqual(before, e.HighlightedSegments()) {
		t.Error("highlight output changed after failed search")
	}
}

func TestHighlightedSegments(t *testing.T) {
	e := New()
	if got := e.HighlightedSegments(); len(got.Segments) != 0 {
		t.Errorf("empty text segments = %+v", got.Segments)
	}

	e.SetText("red green blue")
	got := e.HighlightedSegments()
	if len(got.Segments) != 1 || got.Segments[0].Highlighted() {
		t.Errorf("no spec segments = %+v", got.Segments)
	}

	err := e.SetHighlight(HighlightSpec{{Pattern: "red", Color: "r"}, {Pattern: "blue", Color: "b"}})
	if err != nil {
		t.Fatal(err)
	}
	got = e.HighlightedSegments()
	if len(got.Spans) != 2 || got.Spans[0].Term != 0 || got.Spans[1].Term != 1 {
		t.Errorf("spans = %+v", got.Spans)
	}

	// Text edits are reflected.
	e.SetText("blue")
	got = e.HighlightedSegments()
	if len(got.Segments) != 1 || got.Segments[0].Color != "b" {
		t.Errorf("after edit segments = %+v", got.Segments)
	}

	// Clearing the spec.
	if err := e.SetHighlight(nil); err != nil {
		t.Fatal(err)
	}
	if got := e.HighlightedSegments(); len(got.Spans) != 0 {
		t.Errorf("cleared spec spans = %+v", got.Spans)
	}
}

func TestAppendDictation(t *testing.T) {
	e := New(WithContent("Hello "))

	e.AppendDictation("world")
	e.AppendDictation("again")
	if e.Text() != "Hello world again " {
		t.Errorf("Text() = %q", e.Text())
	}
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want one entry per chunk", e.UndoCount())
	}

	rev := e.Revision()
	e.AppendDictation("   ")
	if e.Revision() != rev {
		t.Error("blank chunk should not edit")
	}
}

func TestTransform(t *testing.T) {
	e := New()
	e.SetText("hello world")

	if err := e.Transform("title"); err != nil {
		t.Fatal(err)
	}
	if e.Text() != "Hello World" {
		t.Errorf("Text() = %q, want Hello World", e.Text())
	}
	if err := e.Undo(); err != nil || e.Text() != "hello world" {
		t.Errorf("undo transform: text=%q err=%v", e.Text(), err)
	}

	if err := e.Transform("missing"); !errors.Is(err, ErrUnknownTransform) {
		t.Errorf("err = %v, want ErrUnknownTransform", err)
	}

	e.Transforms().Register("fail", func(string) (string, error) { return "", errors.New("boom") })
	rev := e.Revision()
	if err := e.Transform("fail"); !errors.Is(err, ErrTransformFailed) {
		t.Errorf("err = %v, want ErrTransformFailed", err)
	}
	if e.Revision() != rev || e.Text() != "hello world" {
		t.Error("failed transform changed the session")
	}
}

func TestOnChange(t *testing.T) {
	e := New()

	var got []Change
	unsubscribe := e.OnChange(func(c Change) { got = append(got, c) })

	e.SetText("a")
	e.Search("a")
	e.Undo()
	e.Reset()
	e.Load("x")

	want := []Change{
		{Revision: 1, Text: "a", Source: SourceTyping},
		{Revision: 2, Text: "", Source: SourceUndo},
		{Revision: 3, Text: "", Source: SourceReset},
		{Revision: 4, Text: "x", Source: SourceLoad},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %+v, want %+v", got, want)
	}

	unsubscribe()
	e.SetText("b")
	if len(got) != len(want) {
		t.Error("listener called after unsubscribe")
	}
}

func TestSetDefaultColor(t *testing.T) {
	e := New(WithContent("x"))
	e.SetDefaultColor("")
	if e.DefaultColor() != DefaultHighlightColor {
		t.Error("empty color should be ignored")
	}
	e.SetDefaultColor("pink")
	e.Search("x")
	if got := e.HighlightSpec()[0].Color; got != "pink" {
		t.Errorf("search color = %q, want pink", got)
	}
}

func TestConcurrentEdits(t *testing.T) {
	e := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e.AppendDictation("w")
				e.Statistics()
				e.HighlightedSegments()
			}
		}()
	}
	wg.Wait()

	if got := e.Statistics().Words; got != 400 {
		t.Errorf("Words = %d, want 400", got)
	}
	if e.Revision() != 400 {
		t.Errorf("Revision() = %d, want 400", e.Revision())
	}
}
