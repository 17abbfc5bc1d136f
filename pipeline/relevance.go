package pipeline

import (
	"strings"
	"unicode/utf8"
)

// minTokenLength filters stopword-like noise out of the query: tokens this
// short ("de", "le", "4k") carry too little signal to gate a match on.
const minTokenLength = 3

// IsRelevant reports whether a candidate title matches the query closely
// enough to be treated as the same product. The query is tokenized on
// whitespace, short tokens are discarded, and the ratio of tokens found as
// substrings of the lowercased title is compared against the threshold.
// Substring containment rather than exact token match tolerates plural and
// suffix variation in titles without needing stemming.
func IsRelevant(title, query string, threshold float64) bool {
	if title == "" || query == "" {
		return false
	}

	titleLower := strings.ToLower(title)

	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(tok) >= minTokenLength {
			tokens = append(tokens, tok)
		}
	}

	// A query made of nothing but short tokens matches everything.
	if len(tokens) == 0 {
		return true
	}

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(titleLower, tok) {
			matched++
		}
	}

	return float64(matched)/float64(len(tokens)) >= threshold
}
