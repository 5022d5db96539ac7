package analytics

import (
	"regexp"
	"sort"
	"strings"
)

// TopWordsLimit is the number of words reported per free-text field.
const TopWordsLimit = 20

var reNonWord = regexp.MustCompile(`[^\w\s]`)

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Tokenize lower-cases text, strips punctuation and returns the words
// that are not stop-words.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = reNonWord.ReplaceAllLiteralString(text, "")

	var words []string
	for _, w := range strings.Fields(text) {
		if IsStopWord(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// TopWords returns the n most frequent words, most frequent first. Equal
// counts are ordered alphabetically.
func TopWords(counts map[string]int, n int) []WordCount {
	words := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		words = append(words, WordCount{Word: w, Count: c})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
