// Package listing wraps the Marrfa listing API: filtered search, response
// normalization and a short-lived response cache keyed by filter fingerprint.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"marrfa-chat/internal/cache"
	"marrfa-chat/internal/config"
	"marrfa-chat/internal/metrics"
	"marrfa-chat/internal/model"
	"marrfa-chat/internal/utils"
)

// SearchResult is a normalized page of listings.
type SearchResult struct {
	Properties []model.PropertyRecord `json:"properties"`
	Total      int                    `json:"total"`
}

// Client talks to the listing API. Safe for concurrent use.
type Client struct {
	cfg        *config.ListingConfig
	httpClient *http.Client
	store      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient creates a listing client. store may be nil to disable response
// caching.
func NewClient(cfg *config.ListingConfig, store cache.Store, cacheTTL time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		store:    store,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Search fetches and normalizes listings matching the filter set. Identical
// filter sets within the cache TTL are served from cache without touching the
// upstream API.
func (c *Client) Search(ctx context.Context, filters *model.FilterSet) (*SearchResult, error) {
	fingerprint := filters.Fingerprint()

	if c.store != nil {
		if data, ok := c.store.Get(ctx, cache.NamespaceProperty, fingerprint); ok {
			var cached SearchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues(string(cache.NamespaceProperty)).Inc()
				return &cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(string(cache.NamespaceProperty)).Inc()
	}

	body, err := c.fetch(ctx, filters.Params())
	if err != nil {
		return nil, err
	}

	result, err := c.parse(body)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if data, err := json.Marshal(result); err == nil {
			c.store.Set(ctx, cache.NamespaceProperty, fingerprint, data, c.cacheTTL)
		}
	}
	return result, nil
}

// ListingURL returns the public website URL for a property id.
func (c *Client) ListingURL(id int64) string {
	return fmt.Sprintf("%s/propertylisting/%d", c.cfg.SiteURL, id)
}

// fetch performs the GET with bounded retries. Only transport errors, 429 and
// 5xx are retried; other statuses fail immediately.
func (c *Client) fetch(ctx context.Context, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	endpoint := c.cfg.BaseURL + "/properties?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.ListingRetries.Inc()
			backoff := time.Duration(500*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := c.attempt(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn("listing request failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, fmt.Errorf("listing request failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) attempt(ctx context.Context, endpoint string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("listing API returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("listing API returned status %d: %s",
			resp.StatusCode, utils.Truncate(string(data), 200))
	}
	return data, false, nil
}

// parse normalizes the response envelope. Records that cannot be normalized
// are skipped individually; one bad record never drops the page.
func (c *Client) parse(body []byte) (*SearchResult, error) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := envelope.Items
	if len(items) == 0 {
		items = envelope.Data
	}

	result := &SearchResult{Properties: make([]model.PropertyRecord, 0, len(items))}
	for _, raw := range items {
		var record map[string]interface{}
		if err := json.Unmarshal(raw, &record); err != nil {
			c.logger.Warn("skipping malformed listing record", zap.Error(err))
			continue
		}
		prop, ok := c.normalize(record)
		if !ok {
			continue
		}
		result.Properties = append(result.Properties, prop)
	}

	result.Total = envelope.Total
	if result.Total == 0 {
		result.Total = envelope.Count
	}
	if result.Total == 0 {
		result.Total = len(result.Properties)
	}
	return result, nil
}

func (c *Client) normalize(record map[string]interface{}) (model.PropertyRecord, bool) {
	id, ok := numberField(record, "id")
	if !ok {
		return model.PropertyRecord{}, false
	}

	prop := model.PropertyRecord{
		ID:         int64(id),
		Title:      firstString(record, "name", "title"),
		Location:   stringField(record, "area"),
		Currency:   stringField(record, "price_currency"),
		ListingURL: c.ListingURL(int64(id)),
	}
	if prop.Title == "" {
		prop.Title = "Untitled property"
	}
	if prop.Currency == "" {
		prop.Currency = "AED"
	}

	// Zero prices mean absent upstream.
	if v, ok := priceField(record, "min_price_aed", "min_price"); ok {
		prop.PriceFrom = &v
	}
	if v, ok := priceField(record, "max_price_aed", "max_price"); ok {
		prop.PriceTo = &v
	}

	if completion := firstString(record, "completion_datetime", "completion_date"); completion != "" {
		if len(completion) > 4 {
			completion = completion[:4]
		}
		prop.CompletionYear = completion
	}

	prop.CoverImage = firstURL(
		record["cover_image"], record["cover_image_url"],
		record["thumbnail"], record["thumbnail_url"], record["images"],
	)
	prop.Images = extractImages(record["images"])

	return prop, true
}

// maxImages caps the normalized image list per record.
const maxImages = 12

func extractImages(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if len(out) >= maxImages {
			break
		}
		if u := extractURL(item); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// extractURL handles every image shape the API is known to ship: a plain URL
// string, a JSON-encoded object string, an object with url/image/src, or a
// list of any of those.
func extractURL(v interface{}) string {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "{") {
			var obj map[string]interface{}
			if err := utils.ParseLooseJSON(s, &obj); err == nil {
				return urlFromObject(obj)
			}
			return ""
		}
		if isHTTPURL(s) {
			return s
		}
	case map[string]interface{}:
		return urlFromObject(x)
	case []interface{}:
		if len(x) > 0 {
			return extractURL(x[0])
		}
	}
	return ""
}

func urlFromObject(obj map[string]interface{}) string {
	for _, key := range []string{"url", "image", "src"} {
		if s, ok := obj[key].(string); ok && isHTTPURL(s) {
			return s
		}
	}
	return ""
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func firstURL(values ...interface{}) string {
	for _, v := range values {
		if u := extractURL(v); u != "" {
			return u
		}
	}
	return ""
}

func stringField(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}

func firstString(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := stringField(record, key); s != "" {
			return s
		}
	}
	return ""
}

func numberField(record map[string]interface{}, key string) (float64, bool) {
	switch n := record[key].(type) {
	case float64:
		return n, true
	case json.Number:
		v, err := n.Float64()
		return v, err == nil
	}
	return 0, false
}

func priceField(record map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if n, ok := numberField(record, key); ok && n != 0 {
			return n, true
		}
	}
	return 0, false
}
