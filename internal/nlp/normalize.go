package nlp

import (
	"strings"
	"unicode"
)

// NormalizedQuery is an immutable view of one user query, built once per
// request and shared by the classifier and parser.
//
// Lowered keeps punctuation and currency symbols (the parser needs "$" and
// "off-plan"); Clean has punctuation stripped for token matching.
type NormalizedQuery struct {
	Original string
	Lowered  string
	Clean    string
	Tokens   []string

	tokenSet map[string]bool
}

// Normalize lower-cases, strips punctuation and tokenizes on whitespace.
func Normalize(text string) NormalizedQuery {
	original := strings.TrimSpace(text)
	lowered := strings.ToLower(original)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	clean := strings.Join(tokens, " ")

	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}

	return NormalizedQuery{
		Original: original,
		Lowered:  lowered,
		Clean:    clean,
		Tokens:   tokens,
		tokenSet: set,
	}
}

// HasToken reports whether the cleaned query contains the exact token.
func (q NormalizedQuery) HasToken(token string) bool {
	return q.tokenSet[token]
}

// TokenCount returns the number of whitespace tokens in the cleaned query.
func (q NormalizedQuery) TokenCount() int {
	return len(q.Tokens)
}

// ContainsPhrase reports whether the cleaned query contains the phrase as a
// substring.
func (q NormalizedQuery) ContainsPhrase(phrase string) bool {
	return strings.Contains(q.Clean, phrase)
}

// IsEmpty reports whether nothing survived cleaning (empty input or
// punctuation only).
func (q NormalizedQuery) IsEmpty() bool {
	return q.Clean == ""
}

// IntersectCount returns how many distinct query tokens appear in vocab.
func (q NormalizedQuery) IntersectCount(vocab map[string]bool) int {
	n := 0
	for t := range q.tokenSet {
		if vocab[t] {
			n++
		}
	}
	return n
}
