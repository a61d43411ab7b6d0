package kb

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"

	"marrfa-chat/internal/lexicon"
	"marrfa-chat/internal/model"
)

// AI is the generative surface the retriever depends on. Every call is
// best-effort; the retriever always has an extractive path when the model is
// down or unconfigured.
type AI interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	Synthesize(ctx context.Context, system, user string) (string, error)
	IsEnabled() bool
}

const (
	titleTerms   = "Terms & Conditions"
	titlePrivacy = "Privacy & Policy"
	titleTeam    = "Team"

	// overrideCap bounds context size when a forced-context override has
	// prepended or appended whole chunk groups.
	overrideCap = 14

	notFoundReply = "I couldn't find that in Marrfa's company information."

	leadershipReply = "Marrfa is led by an experienced leadership team. " +
		"You can learn more about the people behind Marrfa on our Team page at marrfa.com."

	synthesisSystem = "You are Marrfa AI, the assistant for Marrfa Real Estate. " +
		"Answer the user's question using ONLY the provided context. " +
		"If the context does not contain the answer, reply exactly: " + notFoundReply
)

// keywordBoost adds a flat bonus to a chunk's vector score when the query and
// the chunk both touch the same topic group. Cheap topical correction on top
// of embedding similarity.
type keywordBoost struct {
	query   []string
	content []string
	bonus   float64
}

var keywordBoosts = []keywordBoost{
	{[]string{"ceo", "chief executive", "boss", "head of"}, []string{"ceo", "chief executive", "director", "lead"}, 0.15},
	{[]string{"founder", "owner", "founded", "started"}, []string{"founder", "owner", "founded", "established"}, 0.15},
	{[]string{"team", "leadership", "management", "people"}, []string{"team", "leadership", "management"}, 0.12},
	{[]string{"privacy", "personal data"}, []string{"privacy", "personal data", "data protection"}, 0.12},
	{[]string{"terms", "conditions", "t&c", "tos"}, []string{"terms", "conditions"}, 0.12},
	{[]string{"contact", "email", "phone", "reach"}, []string{"contact", "email", "phone"}, 0.10},
	{[]string{"mission", "vision", "values"}, []string{"mission", "vision", "values"}, 0.10},
}

// Retriever answers company questions from the knowledge index: embed, rank,
// apply topical boosts and forced-context overrides, then synthesize.
type Retriever struct {
	index  *Index
	ai     AI
	topK   int
	logger *zap.Logger
}

// NewRetriever creates a retriever. ai may be nil; answers then come from the
// extractive path only.
func NewRetriever(index *Index, ai AI, topK int, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	if topK <= 0 {
		topK = 12
	}
	return &Retriever{index: index, ai: ai, topK: topK, logger: log}
}

// Ready reports whether a real index backs the retriever. Health reporting
// only; Answer works either way.
func (r *Retriever) Ready() bool {
	return r.index.Enabled()
}

// Answer returns a grounded reply for a company question. It never fails:
// every external dependency has a local fallback.
func (r *Retriever) Answer(ctx context.Context, query string) string {
	lowered := strings.ToLower(query)

	vec := r.embed(ctx, query)
	scored := r.index.Search(vec, r.topK)
	scored = applyBoosts(lowered, scored)

	chunks, overridden := r.forceContext(lowered, scored)

	answer := r.synthesize(ctx, query, chunks)

	// Leadership questions must never get an empty or near-empty reply.
	if isLeadershipQuery(lowered) && len(strings.TrimSpace(answer)) < 10 {
		answer = leadershipReply
	}
	if overridden {
		r.logger.Debug("forced context applied",
			zap.String("query", query), zap.Int("chunks", len(chunks)))
	}
	return answer
}

// embed falls back to a random vector of the index dimension so ranking stays
// defined when the embedding service is down. Retrieval quality degrades, the
// contract does not.
func (r *Retriever) embed(ctx context.Context, query string) []float32 {
	if r.ai != nil && r.ai.IsEnabled() {
		vec, err := r.ai.CreateEmbedding(ctx, query)
		if err == nil && len(vec) > 0 {
			return vec
		}
		if err != nil {
			r.logger.Warn("embedding failed, using random vector", zap.Error(err))
		}
	}
	dim := r.index.Dim()
	if dim == 0 {
		return nil
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rand.Float32()*2 - 1
	}
	return vec
}

func applyBoosts(lowered string, scored []Scored) []Scored {
	for i := range scored {
		content := strings.ToLower(scored[i].Chunk.Title + " " + scored[i].Chunk.Content)
		for _, b := range keywordBoosts {
			if containsAny(lowered, b.query) && containsAny(content, b.content) {
				scored[i].Score += b.bonus
			}
		}
	}
	// Re-rank after boosting; stable so equal scores keep vector order.
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored
}

// forceContext guarantees policy and leadership questions see the relevant
// chunks regardless of vector rank: terms and privacy chunks are prepended,
// team chunks appended. Duplicates are dropped and the result capped.
func (r *Retriever) forceContext(lowered string, scored []Scored) ([]model.KnowledgeChunk, bool) {
	var head, tail []model.KnowledgeChunk
	if containsAny(lowered, lexicon.TermsVocab) {
		head = r.index.ByTitle(titleTerms)
	}
	if containsAny(lowered, lexicon.PrivacyVocab) {
		head = append(head, r.index.ByTitle(titlePrivacy)...)
	}
	if isLeadershipQuery(lowered) {
		tail = r.index.ByTitle(titleTeam)
	}
	overridden := len(head) > 0 || len(tail) > 0

	limit := r.topK
	if overridden {
		limit = overrideCap
	}

	seen := map[string]bool{}
	out := make([]model.KnowledgeChunk, 0, limit)
	add := func(c model.KnowledgeChunk) {
		if len(out) >= limit {
			return
		}
		key := dedupKey(c)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}
	for _, c := range head {
		add(c)
	}
	for _, s := range scored {
		add(s.Chunk)
	}
	for _, c := range tail {
		add(c)
	}
	return out, overridden
}

// dedupKey identifies a chunk by URL plus content prefix, catching the same
// passage indexed under two ids.
func dedupKey(c model.KnowledgeChunk) string {
	content := c.Content
	if len(content) > 120 {
		content = content[:120]
	}
	return c.URL + "|" + content
}

func (r *Retriever) synthesize(ctx context.Context, query string, chunks []model.KnowledgeChunk) string {
	if len(chunks) == 0 {
		return notFoundReply
	}

	if r.ai != nil && r.ai.IsEnabled() {
		var b strings.Builder
		for _, c := range chunks {
			fmt.Fprintf(&b, "Source: %s (%s)\n%s\n\n", c.Title, c.URL, c.Content)
		}
		user := fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), query)
		answer, err := r.ai.Synthesize(ctx, synthesisSystem, user)
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			r.logger.Warn("synthesis failed, using extractive answer", zap.Error(err))
		}
	}

	// Extractive fallback: best chunk, truncated, with attribution.
	best := chunks[0]
	content := strings.TrimSpace(best.Content)
	if len(content) > 500 {
		content = content[:500] + "..."
	}
	return fmt.Sprintf("According to %s: %s", best.Title, content)
}

func isLeadershipQuery(lowered string) bool {
	for term := range lexicon.LeadershipTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
