package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTokenizes(t *testing.T) {
	q := Normalize("  Villas in Dubai Marina!  ")

	assert.Equal(t, "Villas in Dubai Marina!", q.Original)
	assert.Equal(t, "villas in dubai marina!", q.Lowered)
	assert.Equal(t, "villas in dubai marina", q.Clean)
	assert.Equal(t, []string{"villas", "in", "dubai", "marina"}, q.Tokens)
	assert.True(t, q.HasToken("dubai"))
	assert.False(t, q.HasToken("abu"))
	assert.Equal(t, 4, q.TokenCount())
}

func TestNormalizeLoweredKeepsSymbols(t *testing.T) {
	// The parser needs the raw symbols; the classifier needs them gone.
	q := Normalize("Off-plan for $500,000?")

	assert.Contains(t, q.Lowered, "off-plan")
	assert.Contains(t, q.Lowered, "$500,000")
	assert.Equal(t, "off plan for 500 000", q.Clean)
}

func TestNormalizePunctuationOnlyIsEmpty(t *testing.T) {
	assert.True(t, Normalize("?!...").IsEmpty())
	assert.True(t, Normalize("").IsEmpty())
	assert.False(t, Normalize("hi").IsEmpty())
}

func TestNormalizeIntersectCount(t *testing.T) {
	q := Normalize("villa villa apartment")
	vocab := map[string]bool{"villa": true, "apartment": true, "penthouse": true}

	// Distinct tokens, not occurrences.
	assert.Equal(t, 2, q.IntersectCount(vocab))
}

func TestNormalizeContainsPhrase(t *testing.T) {
	q := Normalize("Can you hear me?")

	assert.True(t, q.ContainsPhrase("can you hear me"))
	assert.False(t, q.ContainsPhrase("are you there"))
}
