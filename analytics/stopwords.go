package analytics

// stopWords is read-only after package initialization.
var stopWords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the",
		"and", "or", "but", "nor", "so", "yet", "if", "then", "than", "because", "as",
		"i", "me", "my", "we", "us", "our", "you", "your", "he", "him", "his",
		"she", "her", "it", "its", "they", "them", "their", "this", "that", "these", "those",
		"what", "which", "who", "whom",
		"is", "am", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did",
		"will", "would", "shall", "should", "can", "could", "may", "might", "must",
		"of", "in", "on", "at", "to", "for", "with", "by", "from", "about", "into",
		"up", "out", "over", "not", "no", "just", "very", "too",
		"there", "here", "all", "any",
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// IsStopWord reports whether a lower-cased word is ignored by word counts.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
