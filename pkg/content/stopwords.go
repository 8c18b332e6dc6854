package content

// stopWords are dropped from caption tokens. Entries are lowercase.
var stopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
	"dont", "doesnt", "down", "during", "each", "few", "for", "from", "further", "get",
	"got", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "im", "in", "into", "is",
	"it", "its", "itself", "just", "let", "like", "me", "more", "most", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "we", "were", "what", "when", "where",
	"which", "while", "who", "whom", "why", "will", "with", "would", "you", "your",
	"yours", "yourself", "yourselves", "youre", "also", "one", "really", "every", "much", "many",
	"cant", "didnt", "isnt", "arent", "wasnt", "wont", "ive", "ill", "thats", "lets",
	"weve", "theyre", "whats", "theres",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether w (already lowercased) is a stop word
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
