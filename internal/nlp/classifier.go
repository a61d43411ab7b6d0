package nlp

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"marrfa-chat/internal/lexicon"
	"marrfa-chat/internal/model"
)

// IntentLabeler is the generative fallback capability. Implementations must
// return one of the four routing labels; anything else is discarded.
type IntentLabeler interface {
	ClassifyIntent(ctx context.Context, query string) (string, error)
}

var leadershipPattern = regexp.MustCompile(
	`\b(who|what)\s+(is|are)\s+(the\s+)?(ceo|owner|founder|founders|director|directors|chairman|president|boss|leadership|management)\b`,
)

// Classifier routes queries through an ordered rule cascade over the lexicon,
// with a bounded generative fallback for genuinely ambiguous input.
//
// The rule order is load-bearing: leadership checks run before generic
// company keyword counting because leadership questions are short and would
// otherwise miss the two-keyword threshold. Do not reorder.
type Classifier struct {
	labeler         IntentLabeler
	fallbackTimeout time.Duration
	logger          *zap.Logger
}

// NewClassifier creates a classifier. labeler may be nil, in which case the
// cascade ends at the rule-based default.
func NewClassifier(labeler IntentLabeler, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		labeler:         labeler,
		fallbackTimeout: 5 * time.Second,
		logger:          log,
	}
}

// Classify returns the routing verdict for text. It never fails: any internal
// error degrades to the rule-based default.
func (c *Classifier) Classify(ctx context.Context, text string) model.IntentResult {
	q := Normalize(text)

	// 1. Empty, very short, or punctuation-only input.
	if len(q.Original) <= 2 || q.IsEmpty() {
		return model.IntentResult{Intent: model.IntentGreeting, Method: "empty_query"}
	}

	// 2. Greeting phrases, exact or leading.
	for _, g := range lexicon.Greetings {
		if q.Clean == g || strings.HasPrefix(q.Clean, g+" ") {
			return model.IntentResult{Intent: model.IntentGreeting, Method: "pattern"}
		}
	}

	// 3. Voice-transcription listening checks.
	for _, phrase := range lexicon.ListeningChecks {
		if q.ContainsPhrase(phrase) {
			return model.IntentResult{Intent: model.IntentGreeting, Method: "listening_check"}
		}
	}

	// 4. Property vocabulary, plus the dubai+sub-area compound rule that
	// catches multi-word area references single-token intersection misses.
	if q.IntersectCount(lexicon.PropertyKeywords) > 0 {
		return model.IntentResult{Intent: model.IntentProperty, Method: "keyword_count"}
	}
	if q.HasToken("dubai") && q.IntersectCount(lexicon.DubaiSubAreas) > 0 {
		return model.IntentResult{Intent: model.IntentProperty, Method: "keyword_count"}
	}

	// 5. Leadership question pattern.
	if leadershipPattern.MatchString(q.Clean) {
		return model.IntentResult{Intent: model.IntentCompany, Method: "leadership_pattern"}
	}

	// 6. Leadership term plus question word.
	if q.IntersectCount(lexicon.LeadershipTerms) > 0 && q.IntersectCount(lexicon.QuestionWords) > 0 {
		return model.IntentResult{Intent: model.IntentCompany, Method: "leadership_keywords"}
	}

	// 7. Brand name rules.
	if res, ok := c.matchBrand(q); ok {
		return res
	}

	// 8. Company keyword counting.
	if q.IntersectCount(lexicon.CompanyKeywords) >= 2 {
		return model.IntentResult{Intent: model.IntentCompany, Method: "keyword_count"}
	}
	if q.TokenCount() <= 6 && q.IntersectCount(lexicon.StrongCompanyKeywords) > 0 {
		return model.IntentResult{Intent: model.IntentCompany, Method: "strong_keyword"}
	}

	// 9. Questions aimed at the chatbot itself.
	if c.isChatbotSelf(q) {
		return model.IntentResult{Intent: model.IntentGreeting, Method: "chatbot_self"}
	}

	// 10. Literal real-estate question templates.
	for _, tmpl := range lexicon.PropertyQuestionTemplates {
		if q.ContainsPhrase(tmpl) {
			return model.IntentResult{Intent: model.IntentProperty, Method: "pattern"}
		}
	}

	// 11. Generative fallback, only for the hard cases.
	if c.labeler != nil && c.looksAmbiguous(q) {
		if res, ok := c.classifyWithFallback(ctx, q.Original); ok {
			return res
		}
	}

	// 12. Default.
	return model.IntentResult{Intent: model.IntentOutOfContext, Method: "default"}
}

func (c *Classifier) matchBrand(q NormalizedQuery) (model.IntentResult, bool) {
	brandPresent := false
	for _, brand := range lexicon.BrandNames {
		if q.Clean == brand {
			return model.IntentResult{Intent: model.IntentCompany, Method: "company_name"}, true
		}
		if q.HasToken(brand) {
			brandPresent = true
		}
	}
	for _, tmpl := range lexicon.BrandQuestionTemplates {
		if strings.HasPrefix(q.Clean, tmpl) {
			return model.IntentResult{Intent: model.IntentCompany, Method: "company_name"}, true
		}
	}
	if brandPresent {
		// The brand tokens are themselves company vocabulary; require one
		// company keyword beyond them.
		count := 0
		for _, t := range q.Tokens {
			if lexicon.CompanyKeywords[t] && t != "marrfa" && t != "marfa" {
				count++
			}
		}
		if count >= 1 {
			return model.IntentResult{Intent: model.IntentCompany, Method: "company_name"}, true
		}
	}
	return model.IntentResult{}, false
}

func (c *Classifier) isChatbotSelf(q NormalizedQuery) bool {
	if q.TokenCount() >= 2 && q.TokenCount() <= 5 &&
		lexicon.AuxiliaryVerbs[q.Tokens[0]] && q.Tokens[1] == "you" {
		return true
	}
	return q.TokenCount() <= 6 && q.IntersectCount(lexicon.SelfReferenceWords) > 0
}

// looksAmbiguous bounds external-call volume: only wh-questions of eight
// tokens or fewer, or three-token queries, reach the fallback model.
func (c *Classifier) looksAmbiguous(q NormalizedQuery) bool {
	if q.TokenCount() <= 3 {
		return true
	}
	return q.TokenCount() <= 8 && len(q.Tokens) > 0 && lexicon.WhWords[q.Tokens[0]]
}

func (c *Classifier) classifyWithFallback(ctx context.Context, query string) (model.IntentResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.fallbackTimeout)
	defer cancel()

	label, err := c.labeler.ClassifyIntent(ctx, query)
	if err != nil {
		c.logger.Warn("intent fallback failed", zap.Error(err))
		return model.IntentResult{}, false
	}
	label = strings.ToUpper(strings.TrimSpace(label))
	if !model.ValidIntent(label) {
		c.logger.Warn("intent fallback returned unknown label", zap.String("label", label))
		return model.IntentResult{}, false
	}
	return model.IntentResult{Intent: model.Intent(label), Method: "llm"}, true
}
