package model

// PropertyRecord is the canonical shape built from heterogeneous upstream
// listing JSON. Immutable once built; never persisted beyond the cache TTL.
type PropertyRecord struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Location       string   `json:"location,omitempty"`
	PriceFrom      *float64 `json:"price_from,omitempty"`
	PriceTo        *float64 `json:"price_to,omitempty"`
	Currency       string   `json:"currency"`
	CompletionYear string   `json:"completion_year,omitempty"`
	CoverImage     string   `json:"cover_image,omitempty"`
	Images         []string `json:"images,omitempty"`
	ListingURL     string   `json:"listing_url,omitempty"`
}
