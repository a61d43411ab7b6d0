package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marrfa-chat/internal/cache"
	"marrfa-chat/internal/config"
	"marrfa-chat/internal/lexicon"
	"marrfa-chat/internal/listing"
	"marrfa-chat/internal/metrics"
	"marrfa-chat/internal/model"
	"marrfa-chat/internal/nlp"
)

// PropertySearcher fetches normalized listing pages.
type PropertySearcher interface {
	Search(ctx context.Context, filters *model.FilterSet) (*listing.SearchResult, error)
}

// CompanyAnswerer answers company questions from the knowledge base. Answer
// never fails; Ready is for health reporting.
type CompanyAnswerer interface {
	Answer(ctx context.Context, query string) string
	Ready() bool
}

// SearchLogger persists resolved queries for offline analysis.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry *model.SearchLogEntry) error
}

// maxAttachmentSize caps the extracted text of one uploaded file.
const maxAttachmentSize = 10 * 1024 * 1024

const fileAnalysisPrompt = "You are Marrfa AI, the assistant for Marrfa Real Estate. " +
	"Analyze the uploaded document content below and answer the user's question about it. " +
	"Stay factual and only use the document content."

// ChatService runs the chat pipeline: usage limiting, intent classification,
// routing to the property search or company knowledge path, and response
// caching.
type ChatService struct {
	classifier *nlp.Classifier
	searcher   PropertySearcher
	company    CompanyAnswerer
	ai         AIClient
	store      cache.Store
	limiter    *UsageLimiter
	searchLog  SearchLogger

	intentTTL  time.Duration
	companyTTL time.Duration
	perPage    int
	showCount  int
	logger     *zap.Logger
}

// NewChatService wires the pipeline. ai, store and searchLog may be nil;
// the corresponding stages are skipped.
func NewChatService(
	classifier *nlp.Classifier,
	searcher PropertySearcher,
	company CompanyAnswerer,
	ai AIClient,
	store cache.Store,
	limiter *UsageLimiter,
	searchLog SearchLogger,
	cacheCfg config.CacheConfig,
	listingCfg config.ListingConfig,
	log *zap.Logger,
) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	perPage := listingCfg.PerPage
	if perPage <= 0 {
		perPage = 15
	}
	showCount := listingCfg.ShowCount
	if showCount <= 0 {
		showCount = 10
	}
	return &ChatService{
		classifier: classifier,
		searcher:   searcher,
		company:    company,
		ai:         ai,
		store:      store,
		limiter:    limiter,
		searchLog:  searchLog,
		intentTTL:  cacheCfg.IntentTTL,
		companyTTL: cacheCfg.CompanyTTL,
		perPage:    perPage,
		showCount:  showCount,
		logger:     log,
	}
}

// Handle processes one chat turn. It never fails: every degraded stage maps
// to a user-facing reply with an error tag in filters_used.
func (s *ChatService) Handle(ctx context.Context, req *model.ChatRequest) *model.ChatResponse {
	start := time.Now()
	query := strings.TrimSpace(req.Query)

	if !req.IsLoggedIn && s.limiter != nil && !s.limiter.Allow(req.SessionID) {
		return s.respond(limitReply, map[string]any{"error": "LIMIT"})
	}

	result := s.classify(ctx, query)
	intent := string(result.Intent)
	metrics.ChatRequests.WithLabelValues(intent).Inc()
	defer func() {
		metrics.ChatDuration.WithLabelValues(intent).Observe(time.Since(start).Seconds())
	}()

	if result.Intent == model.IntentGreeting {
		return s.respond(greetingReply(result.Method),
			map[string]any{"intent": "GREETING", "method": result.Method})
	}

	// Attachments bypass intent routing and the response cache entirely.
	if len(req.Files) > 0 {
		return s.handleAttachments(ctx, req, query)
	}

	var resp *model.ChatResponse
	switch result.Intent {
	case model.IntentProperty:
		resp = s.handleProperty(ctx, req, query, result)
	case model.IntentCompany:
		resp = s.handleCompany(ctx, query)
	default:
		resp = s.respond(outOfContextReply,
			map[string]any{"intent": "OUT_OF_CONTEXT", "method": result.Method})
	}
	return resp
}

// Ready reports whether the knowledge path is fully operational.
func (s *ChatService) Ready() bool {
	return s.company != nil && s.company.Ready()
}

// classify runs the rule cascade with a verdict cache in front. Cached
// verdicts are keyed on the lexicon version so a vocabulary change
// invalidates them.
func (s *ChatService) classify(ctx context.Context, query string) model.IntentResult {
	if s.store == nil {
		return s.classifier.Classify(ctx, query)
	}

	key := cache.Key(query, lexicon.Version)
	if data, ok := s.store.Get(ctx, cache.NamespaceIntent, key); ok {
		var cached model.IntentResult
		if err := json.Unmarshal(data, &cached); err == nil && model.ValidIntent(string(cached.Intent)) {
			metrics.CacheHits.WithLabelValues(string(cache.NamespaceIntent)).Inc()
			return cached
		}
	}
	metrics.CacheMisses.WithLabelValues(string(cache.NamespaceIntent)).Inc()

	result := s.classifier.Classify(ctx, query)
	if data, err := json.Marshal(result); err == nil {
		s.store.Set(ctx, cache.NamespaceIntent, key, data, s.intentTTL)
	}
	return result
}

func (s *ChatService) handleProperty(ctx context.Context, req *model.ChatRequest, query string, result model.IntentResult) *model.ChatResponse {
	filters := nlp.ParseFilters(query)

	if filters.ForeignCurrency {
		used := filters.Map()
		used["intent"] = "PROPERTY"
		used["currency_warning"] = true
		return s.respond(currencyConversionReply(filters.Amount, filters.Currency), used)
	}

	if filters.SearchQuery == "" {
		filters.SearchQuery = "dubai"
	}
	filters.Page = 1
	if req.Page > 0 {
		filters.Page = req.Page
	}
	filters.PerPage = s.perPage
	if req.PerPage > 0 {
		filters.PerPage = req.PerPage
	}

	used := filters.Map()
	used["intent"] = "PROPERTY"

	page, err := s.searcher.Search(ctx, &filters)
	if err != nil {
		s.logger.Warn("property search failed", zap.String("query", query), zap.Error(err))
		used["error"] = err.Error()
		resp := s.respond(noResultsReply, used)
		s.logSearch(ctx, req, query, result, &filters, 0)
		return resp
	}

	total := len(page.Properties)
	showCount := s.showCount
	if total < showCount {
		showCount = total
	}

	reply := searchReply(query, &filters, total, showCount)
	if total == 0 {
		reply = noResultsReply
	}

	s.logSearch(ctx, req, query, result, &filters, total)

	return &model.ChatResponse{
		Reply:       reply,
		Properties:  page.Properties[:showCount],
		Total:       total,
		Page:        filters.Page,
		PerPage:     s.showCount,
		FiltersUsed: used,
	}
}

func (s *ChatService) handleCompany(ctx context.Context, query string) *model.ChatResponse {
	if s.company == nil {
		return s.respond(companyDegradedReply,
			map[string]any{"intent": "COMPANY", "error": "kb_unavailable"})
	}

	used := map[string]any{"intent": "COMPANY"}

	var key string
	if s.store != nil {
		key = cache.Key(query)
		if data, ok := s.store.Get(ctx, cache.NamespaceCompany, key); ok {
			metrics.CacheHits.WithLabelValues(string(cache.NamespaceCompany)).Inc()
			return s.respond(string(data), used)
		}
		metrics.CacheMisses.WithLabelValues(string(cache.NamespaceCompany)).Inc()
	}

	answer := s.company.Answer(ctx, query)
	if s.store != nil {
		s.store.Set(ctx, cache.NamespaceCompany, key, []byte(answer), s.companyTTL)
	}
	return s.respond(answer, used)
}

func (s *ChatService) handleAttachments(ctx context.Context, req *model.ChatRequest, query string) *model.ChatResponse {
	if !req.IsLoggedIn {
		return s.respond(fileAuthReply, map[string]any{"error": "AUTH_REQUIRED"})
	}

	var contents []string
	for _, file := range req.Files {
		if file.Size > maxAttachmentSize || int64(len(file.Content)) > maxAttachmentSize {
			return s.respond(
				fmt.Sprintf("File '%s' is too large. Maximum size is 10MB.", file.Name),
				map[string]any{"error": "FILE_TOO_LARGE"})
		}
		if strings.TrimSpace(file.Content) == "" {
			return s.respond(
				fmt.Sprintf("Error processing '%s': no readable text content.", file.Name),
				map[string]any{"error": "FILE_PROCESSING_ERROR"})
		}
		contents = append(contents, fmt.Sprintf("=== %s ===\n%s", file.Name, file.Content))
	}

	used := map[string]any{"intent": "FILE_ANALYSIS", "files_count": len(req.Files)}

	if s.ai == nil || !s.ai.IsEnabled() {
		return s.respond("File analysis is currently unavailable. Please try again later.",
			map[string]any{"error": "AI_UNAVAILABLE"})
	}

	user := strings.Join(contents, "\n\n")
	if query != "" {
		user += "\n\nQuestion: " + query
	}
	analysis, err := s.ai.Synthesize(ctx, fileAnalysisPrompt, user)
	if err != nil {
		s.logger.Warn("file analysis failed", zap.Error(err))
		return s.respond("File analysis is currently unavailable. Please try again later.",
			map[string]any{"error": "AI_UNAVAILABLE"})
	}
	return s.respond(analysis, used)
}

// logSearch is best-effort: a failed insert is logged and forgotten.
func (s *ChatService) logSearch(ctx context.Context, req *model.ChatRequest, query string, result model.IntentResult, filters *model.FilterSet, total int) {
	if s.searchLog == nil {
		return
	}
	filterJSON, err := json.Marshal(filters.Map())
	if err != nil {
		filterJSON = []byte("{}")
	}
	entry := &model.SearchLogEntry{
		ID:           uuid.NewString(),
		SessionID:    req.SessionID,
		Query:        query,
		Intent:       string(result.Intent),
		IntentMethod: result.Method,
		Filters:      string(filterJSON),
		ResultCount:  total,
	}
	if err := s.searchLog.LogSearch(ctx, entry); err != nil {
		s.logger.Warn("search log insert failed", zap.Error(err))
	}
}

func (s *ChatService) respond(reply string, used map[string]any) *model.ChatResponse {
	return &model.ChatResponse{
		Reply:       reply,
		Properties:  []model.PropertyRecord{},
		Total:       0,
		Page:        1,
		PerPage:     s.showCount,
		FiltersUsed: used,
	}
}
