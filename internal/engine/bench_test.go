package engine

import (
	"strings"
	"testing"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, lines int) *Engine {
	b.Helper()
	var sb strings.Builder
	line := "The quick brown fox jumps over the lazy dog. Café au lait!\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}
	return New(WithContent(sb.String()))
}

// ============================================================================
// Read Operation Benchmarks
// ============================================================================

func BenchmarkEngineStatisticsCached(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	e.Statistics()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Statistics()
	}
}

func BenchmarkEngineStatisticsAfterEdit(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	text := e.Text()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.ApplyEdit(text, EditOptions{})
		_ = e.Statistics()
	}
}

func BenchmarkEngineHighlight(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	if err := e.SetHighlight(HighlightSpec{{Pattern: "fox", Color: "red"}, {Pattern: "caf.", Color: "blue"}}); err != nil {
		b.Fatal(err)
	}
	text := e.Text()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.ApplyEdit(text, EditOptions{})
		_ = e.HighlightedSegments()
	}
}

// ============================================================================
// Write Operation Benchmarks
// ============================================================================

func BenchmarkEngineSetText(b *testing.B) {
	e := setupLargeEngine(b, 100)
	text := e.Text()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.SetText(text)
	}
}

func BenchmarkEngineUndoRedo(b *testing.B) {
	e := setupLargeEngine(b, 100)
	for i := 0; i < 100; i++ {
		e.AppendDictation("word")
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Undo()
		_ = e.Redo()
	}
}

func BenchmarkEngineFindAndReplace(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := e.FindAndReplace("fox", "fox"); err != nil {
			b.Fatal(err)
		}
	}
}
