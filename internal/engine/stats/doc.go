// Package stats derives document statistics and word frequencies from text.
//
// All functions are pure: the same text always yields the same Statistics and
// FrequencyTable. Cache memoizes the results against the session revision
// counter so repeated reads of an unchanged document do not re-tokenize it.
//
// # Word normalization
//
// Words made only of ASCII letters are case-folded before counting, so "Cat",
// "cat" and "CAT" aggregate together. Any other word, including words with
// non-ASCII letters, digits or punctuation, is counted by its exact value:
//
//	table := stats.Frequencies("Cat cat CAT Café café")
//	table.Count("cat")  // 3
//	table.Count("Café") // 1
//	table.Count("café") // 1
package stats
