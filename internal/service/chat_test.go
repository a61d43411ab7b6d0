package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marrfa-chat/internal/cache"
	"marrfa-chat/internal/config"
	"marrfa-chat/internal/listing"
	"marrfa-chat/internal/model"
	"marrfa-chat/internal/nlp"
)

type fakeSearcher struct {
	calls       int
	lastFilters *model.FilterSet
	result      *listing.SearchResult
	err         error
}

func (f *fakeSearcher) Search(_ context.Context, filters *model.FilterSet) (*listing.SearchResult, error) {
	f.calls++
	copied := *filters
	f.lastFilters = &copied
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCompany struct {
	calls  int
	answer string
}

func (f *fakeCompany) Answer(_ context.Context, _ string) string {
	f.calls++
	return f.answer
}

func (f *fakeCompany) Ready() bool { return true }

type fakeChatAI struct {
	enabled   bool
	synthesis string
	synthErr  error
}

func (f *fakeChatAI) ClassifyIntent(_ context.Context, _ string) (string, error) {
	return "", errors.New("not configured")
}
func (f *fakeChatAI) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("not configured")
}
func (f *fakeChatAI) Synthesize(_ context.Context, _, _ string) (string, error) {
	return f.synthesis, f.synthErr
}
func (f *fakeChatAI) IsEnabled() bool { return f.enabled }

func chatFixture(searcher PropertySearcher, company CompanyAnswerer, ai AIClient, store cache.Store) *ChatService {
	return NewChatService(
		nlp.NewClassifier(nil, nil),
		searcher, company, ai, store,
		NewUsageLimiter(3), nil,
		config.CacheConfig{IntentTTL: 30 * time.Minute, CompanyTTL: 30 * time.Minute, PropertyTTL: 5 * time.Minute},
		config.ListingConfig{PerPage: 15, ShowCount: 10},
		nil,
	)
}

func propertyPage(n int) *listing.SearchResult {
	result := &listing.SearchResult{}
	for i := 0; i < n; i++ {
		result.Properties = append(result.Properties, model.PropertyRecord{
			ID:    int64(i + 1),
			Title: "Property",
		})
	}
	result.Total = n
	return result
}

func TestHandleGreeting(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{Query: "hello", IsLoggedIn: true})

	assert.Contains(t, resp.Reply, "Marrfa AI")
	assert.Equal(t, "GREETING", resp.FiltersUsed["intent"])
	assert.Equal(t, "pattern", resp.FiltersUsed["method"])
	assert.Empty(t, resp.Properties)
}

func TestHandleEmptyQueryIsGreeting(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{Query: "  ", IsLoggedIn: true})

	assert.Equal(t, "empty_query", resp.FiltersUsed["method"])
	assert.Contains(t, resp.Reply, "short message")
}

func TestHandlePropertySearch(t *testing.T) {
	searcher := &fakeSearcher{result: propertyPage(4)}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query: "2 bedroom apartments in dubai marina", IsLoggedIn: true,
	})

	require.Equal(t, 1, searcher.calls)
	assert.Equal(t, "dubai marina", searcher.lastFilters.SearchQuery)
	assert.Equal(t, "2 bedroom", searcher.lastFilters.UnitBedrooms)
	assert.Equal(t, 1, searcher.lastFilters.Page)
	assert.Equal(t, 15, searcher.lastFilters.PerPage)
	assert.Equal(t, 4, resp.Total)
	assert.Len(t, resp.Properties, 4)
	assert.Equal(t, "PROPERTY", resp.FiltersUsed["intent"])
	assert.NotEmpty(t, resp.Reply)
}

func TestHandlePropertyCapsDisplayedResults(t *testing.T) {
	searcher := &fakeSearcher{result: propertyPage(15)}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query: "apartments in dubai", IsLoggedIn: true,
	})

	assert.Equal(t, 15, resp.Total)
	assert.Len(t, resp.Properties, 10)
}

func TestHandlePropertyDefaultsToDubai(t *testing.T) {
	searcher := &fakeSearcher{result: propertyPage(1)}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	s.Handle(context.Background(), &model.ChatRequest{Query: "show me apartments", IsLoggedIn: true})

	assert.Equal(t, "dubai", searcher.lastFilters.SearchQuery)
}

func TestHandlePropertyZeroResults(t *testing.T) {
	searcher := &fakeSearcher{result: propertyPage(0)}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{Query: "villas in arjan", IsLoggedIn: true})

	assert.Equal(t, noResultsReply, resp.Reply)
	assert.Equal(t, 0, resp.Total)
}

func TestHandlePropertySearchErrorDegrades(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("upstream down")}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{Query: "villas in dubai", IsLoggedIn: true})

	assert.Equal(t, noResultsReply, resp.Reply)
	assert.Equal(t, "upstream down", resp.FiltersUsed["error"])
}

func TestHandleForeignCurrencyShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{result: propertyPage(5)}
	s := chatFixture(searcher, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query: "property for 50000 usd", IsLoggedIn: true,
	})

	assert.Equal(t, 0, searcher.calls)
	assert.Contains(t, resp.Reply, "Currency Conversion Required")
	assert.Contains(t, resp.Reply, "183,500 AED")
	assert.Equal(t, true, resp.FiltersUsed["currency_warning"])
}

func TestHandleCompanyQuery(t *testing.T) {
	company := &fakeCompany{answer: "Marrfa is a Dubai real estate company."}
	s := chatFixture(&fakeSearcher{}, company, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{Query: "who is the ceo of marrfa", IsLoggedIn: true})

	assert.Equal(t, company.answer, resp.Reply)
	assert.Equal(t, "COMPANY", resp.FiltersUsed["intent"])
}

func TestHandleCompanyCacheHitSkipsRetriever(t *testing.T) {
	company := &fakeCompany{answer: "cached answer"}
	s := chatFixture(&fakeSearcher{}, company, nil, cache.NewMemory(100))

	first := s.Handle(context.Background(), &model.ChatRequest{Query: "tell me about marrfa", IsLoggedIn: true})
	second := s.Handle(context.Background(), &model.ChatRequest{Query: "Tell me about   Marrfa", IsLoggedIn: true})

	assert.Equal(t, 1, company.calls)
	assert.Equal(t, first.Reply, second.Reply)
}

func TestHandleOutOfContext(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query: "give me a recipe for chocolate cake please and thanks", IsLoggedIn: true,
	})

	assert.Equal(t, outOfContextReply, resp.Reply)
	assert.Equal(t, "OUT_OF_CONTEXT", resp.FiltersUsed["intent"])
}

func TestHandleAnonymousLimit(t *testing.T) {
	s := chatFixture(&fakeSearcher{result: propertyPage(1)}, &fakeCompany{}, nil, nil)
	req := &model.ChatRequest{Query: "apartments in dubai", SessionID: "anon-1"}

	for i := 0; i < 3; i++ {
		resp := s.Handle(context.Background(), req)
		assert.NotEqual(t, limitReply, resp.Reply)
	}
	resp := s.Handle(context.Background(), req)
	assert.Equal(t, limitReply, resp.Reply)
	assert.Equal(t, "LIMIT", resp.FiltersUsed["error"])
}

func TestHandleLoggedInBypassesLimit(t *testing.T) {
	s := chatFixture(&fakeSearcher{result: propertyPage(1)}, &fakeCompany{}, nil, nil)
	req := &model.ChatRequest{Query: "apartments in dubai", SessionID: "user-1", IsLoggedIn: true}

	for i := 0; i < 5; i++ {
		resp := s.Handle(context.Background(), req)
		assert.NotEqual(t, limitReply, resp.Reply)
	}
}

func TestHandleAttachmentsRequireLogin(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query: "summarize this contract for my villa purchase",
		Files: []model.Attachment{{Name: "contract.txt", Content: "terms..."}},
	})

	assert.Equal(t, fileAuthReply, resp.Reply)
	assert.Equal(t, "AUTH_REQUIRED", resp.FiltersUsed["error"])
}

func TestHandleAttachmentTooLarge(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, &fakeChatAI{enabled: true}, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query:      "analyze this property brochure",
		IsLoggedIn: true,
		Files:      []model.Attachment{{Name: "big.pdf", Content: "x", Size: maxAttachmentSize + 1}},
	})

	assert.Contains(t, resp.Reply, "too large")
	assert.Equal(t, "FILE_TOO_LARGE", resp.FiltersUsed["error"])
}

func TestHandleAttachmentAnalysis(t *testing.T) {
	ai := &fakeChatAI{enabled: true, synthesis: "The document describes a villa sale agreement."}
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, ai, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query:      "what property does this contract cover",
		IsLoggedIn: true,
		Files:      []model.Attachment{{Name: "contract.txt", Content: "Villa 12, Dubai Hills."}},
	})

	assert.Equal(t, ai.synthesis, resp.Reply)
	assert.Equal(t, "FILE_ANALYSIS", resp.FiltersUsed["intent"])
	assert.Equal(t, 1, resp.FiltersUsed["files_count"])
}

func TestHandleAttachmentAnalysisUnavailableWithoutAI(t *testing.T) {
	s := chatFixture(&fakeSearcher{}, &fakeCompany{}, nil, nil)

	resp := s.Handle(context.Background(), &model.ChatRequest{
		Query:      "review this floor plan for the apartment",
		IsLoggedIn: true,
		Files:      []model.Attachment{{Name: "plan.txt", Content: "2 bedrooms, 2 baths"}},
	})

	assert.Equal(t, "AI_UNAVAILABLE", resp.FiltersUsed["error"])
}
