package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"marrfa-chat/internal/model"
)

type stubLabeler struct {
	label string
	err   error
	calls int
}

func (s *stubLabeler) ClassifyIntent(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.label, s.err
}

func TestClassifyRuleCascade(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		query  string
		intent model.Intent
		method string
	}{
		// Empty or near-empty input.
		{"", model.IntentGreeting, "empty_query"},
		{"ok", model.IntentGreeting, "empty_query"},
		{"???", model.IntentGreeting, "empty_query"},

		// Greeting phrases, exact and leading.
		{"hello", model.IntentGreeting, "pattern"},
		{"Hey", model.IntentGreeting, "pattern"},
		{"good morning everyone", model.IntentGreeting, "pattern"},
		{"salam", model.IntentGreeting, "pattern"},

		// Voice listening checks.
		{"are you listening", model.IntentGreeting, "listening_check"},
		{"can you hear me?", model.IntentGreeting, "listening_check"},

		// Property vocabulary.
		{"villas in dubai", model.IntentProperty, "keyword_count"},
		{"2 bedroom apartment", model.IntentProperty, "keyword_count"},
		{"anything near dubai creek", model.IntentProperty, "keyword_count"},
		{"what can I get in dubai south", model.IntentProperty, "keyword_count"},

		// Leadership questions.
		{"who is the ceo of marrfa", model.IntentCompany, "leadership_pattern"},
		{"what are the founders doing", model.IntentCompany, "leadership_pattern"},
		{"tell us about the management", model.IntentCompany, "leadership_keywords"},

		// Brand name rules.
		{"marrfa", model.IntentCompany, "company_name"},
		{"marfa", model.IntentCompany, "company_name"},
		{"what is marrfa", model.IntentCompany, "company_name"},
		{"tell me about marrfa please", model.IntentCompany, "company_name"},
		{"marrfa contact details", model.IntentCompany, "company_name"},

		// Company keyword counting.
		{"privacy policy and terms please", model.IntentCompany, "keyword_count"},
		{"the team", model.IntentCompany, "strong_keyword"},

		// Questions aimed at the chatbot.
		{"are you real", model.IntentGreeting, "chatbot_self"},
		{"do you understand me", model.IntentGreeting, "chatbot_self"},

		// Literal real-estate phrasings.
		{"how much for that one", model.IntentProperty, "pattern"},

		// Nothing matched and no fallback configured.
		{"give me a recipe for chocolate cake right now thanks", model.IntentOutOfContext, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.query)
			assert.Equal(t, tt.intent, got.Intent, "query %q", tt.query)
			assert.Equal(t, tt.method, got.Method, "query %q", tt.query)
		})
	}
}

func TestClassifyLeadershipBeatsKeywordCount(t *testing.T) {
	c := NewClassifier(nil, nil)

	// "who is the ceo" has only one company keyword, so without the
	// leadership rules it would fall through to the default.
	got := c.Classify(context.Background(), "who is the ceo")
	assert.Equal(t, model.IntentCompany, got.Intent)
	assert.True(t, strings.HasPrefix(got.Method, "leadership"), got.Method)
}

func TestClassifyPropertyBeatsCompanyOnMixedQuery(t *testing.T) {
	c := NewClassifier(nil, nil)

	// Property vocabulary is checked before any company rule.
	got := c.Classify(context.Background(), "marrfa villas in dubai")
	assert.Equal(t, model.IntentProperty, got.Intent)
}

func TestClassifyFallbackUsed(t *testing.T) {
	labeler := &stubLabeler{label: "COMPANY"}
	c := NewClassifier(labeler, nil)

	got := c.Classify(context.Background(), "zeus")

	assert.Equal(t, 1, labeler.calls)
	assert.Equal(t, model.IntentCompany, got.Intent)
	assert.Equal(t, "llm", got.Method)
}

func TestClassifyFallbackLabelNormalized(t *testing.T) {
	labeler := &stubLabeler{label: " property \n"}
	c := NewClassifier(labeler, nil)

	got := c.Classify(context.Background(), "zeus")
	assert.Equal(t, model.IntentProperty, got.Intent)
}

func TestClassifyFallbackInvalidLabelDefaults(t *testing.T) {
	labeler := &stubLabeler{label: "BANANA"}
	c := NewClassifier(labeler, nil)

	got := c.Classify(context.Background(), "zeus")
	assert.Equal(t, model.IntentOutOfContext, got.Intent)
	assert.Equal(t, "default", got.Method)
}

func TestClassifyFallbackErrorDefaults(t *testing.T) {
	labeler := &stubLabeler{err: errors.New("model down")}
	c := NewClassifier(labeler, nil)

	got := c.Classify(context.Background(), "zeus")
	assert.Equal(t, model.IntentOutOfContext, got.Intent)
	assert.Equal(t, "default", got.Method)
}

func TestClassifyFallbackOnlyForAmbiguousQueries(t *testing.T) {
	labeler := &stubLabeler{label: "COMPANY"}
	c := NewClassifier(labeler, nil)

	// Long non-question input never reaches the fallback model.
	got := c.Classify(context.Background(), "give me a recipe for chocolate cake right now thanks")
	assert.Equal(t, 0, labeler.calls)
	assert.Equal(t, model.IntentOutOfContext, got.Intent)

	// A short wh-question does.
	c.Classify(context.Background(), "where should I go tomorrow")
	assert.Equal(t, 1, labeler.calls)
}
