package stats

import (
	"math"
	"sync"
	"unicode/utf8"

	"github.com/dshills/textdesk/internal/engine/token"
	"github.com/rivo/uniseg"
)

// Statistics summarizes a document.
//
// Characters counts Unicode code points, not UTF-16 code units, so "😀" is
// one character. Graphemes counts user-perceived characters and is reported
// alongside for display purposes.
type Statistics struct {
	Characters        int `json:"characters"`
	Graphemes         int `json:"graphemes"`
	Words             int `json:"words"`
	Sentences         int `json:"sentences"`
	Paragraphs        int `json:"paragraphs"`
	UniqueWords       int `json:"unique_words"`
	AvgWordLength     int `json:"avg_word_length"`
	AvgSentenceLength int `json:"avg_sentence_length"`
}

// Compute derives Statistics for text. The frequency table is built as a
// side product and returned so callers don't tokenize twice.
func Compute(text string) (Statistics, *FrequencyTable) {
	ft := &FrequencyTable{index: make(map[string]int)}

	var words, letters int
	for w := range token.Words(text) {
		words++
		letters += utf8.RuneCountInString(w)
		ft.add(Normalize(w))
	}

	s := Statistics{
		Characters:    utf8.RuneCountInString(text),
		Graphemes:     uniseg.GraphemeClusterCount(text),
		Words:         words,
		Sentences:     token.Count(token.Sentences(text)),
		Paragraphs:    token.Count(token.Paragraphs(text)),
		UniqueWords:   ft.Len(),
		AvgWordLength: roundDiv(letters, max(words, 1)),
	}
	if s.Sentences > 0 {
		s.AvgSentenceLength = roundDiv(words, s.Sentences)
	}
	return s, ft
}

// roundDiv returns n/d rounded half up.
func roundDiv(n, d int) int {
	return int(math.Floor(float64(n)/float64(d) + 0.5))
}

// Cache memoizes Compute for the most recent revision.
type Cache struct {
	mu    sync.Mutex
	valid bool
	rev   uint64
	stats Statistics
	freq  *FrequencyTable

	computes int
}

// Get returns the statistics for text at revision rev, recomputing only when
// rev differs from the cached revision.
func (c *Cache) Get(rev uint64, text string) (Statistics, *FrequencyTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.rev == rev {
		return c.stats, c.freq
	}

	c.stats, c.freq = Compute(text)
	c.rev = rev
	c.valid = true
	c.computes++
	return c.stats, c.freq
}

// Invalidate drops the cached result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.freq = nil
}

// Computes returns how many times the cache recomputed.
func (c *Cache) Computes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computes
}
