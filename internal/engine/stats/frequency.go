package stats

import (
	"sort"
	"strings"

	"github.com/dshills/textdesk/internal/engine/token"
)

// Entry is one row of a frequency table.
type Entry struct {
	Word  string
	Count int
}

// FrequencyTable maps normalized words to occurrence counts.
// Entries keep the order in which each word was first seen.
// A FrequencyTable is immutable once built.
type FrequencyTable struct {
	entries []Entry
	index   map[string]int
}

// Frequencies builds the frequency table for text.
func Frequencies(text string) *FrequencyTable {
	ft := &FrequencyTable{index: make(map[string]int)}
	for w := range token.Words(text) {
		ft.add(Normalize(w))
	}
	return ft
}

func (ft *FrequencyTable) add(word string) {
	if i, ok := ft.index[word]; ok {
		ft.entries[i].Count++
		return
	}
	ft.index[word] = len(ft.entries)
	ft.entries = append(ft.entries, Entry{Word: word, Count: 1})
}

// Normalize returns the aggregation key for a word token. Pure ASCII
// alphabetic words are lower-cased; everything else is returned unchanged.
func Normalize(word string) string {
	if word == "" {
		return word
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return word
		}
	}
	return strings.ToLower(word)
}

// Len returns the number of distinct words.
func (ft *FrequencyTable) Len() int {
	if ft == nil {
		return 0
	}
	return len(ft.entries)
}

// Count returns the count for a normalized word, or 0 if absent.
func (ft *FrequencyTable) Count(word string) int {
	if ft == nil {
		return 0
	}
	if i, ok := ft.index[word]; ok {
		return ft.entries[i].Count
	}
	return 0
}

// Entries returns a copy of the table in first-seen order.
func (ft *FrequencyTable) Entries() []Entry {
	if ft == nil {
		return nil
	}
	out := make([]Entry, len(ft.entries))
	copy(out, ft.entries)
	return out
}

// Map returns the table as a plain map.
func (ft *FrequencyTable) Map() map[string]int {
	m := make(map[string]int, ft.Len())
	for _, e := range ft.Entries() {
		m[e.Word] = e.Count
	}
	return m
}

// Top returns up to n entries ordered by count descending. Ties keep
// first-seen order. A non-positive n returns every entry.
func (ft *FrequencyTable) Top(n int) []Entry {
	out := ft.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
