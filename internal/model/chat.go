package model

// Attachment carries the already-extracted text of an uploaded file.
// Decoding file formats is the API layer's job; the core only sees text.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Size    int64  `json:"size,omitempty"`
}

// ChatRequest represents an incoming chat turn
type ChatRequest struct {
	Query      string       `json:"query"`
	SessionID  string       `json:"session_id,omitempty"`
	IsLoggedIn bool         `json:"is_logged_in"`
	Page       int          `json:"page,omitempty"`
	PerPage    int          `json:"per_page,omitempty"`
	Files      []Attachment `json:"files,omitempty"`
}

// ChatResponse is the result contract back to the caller. FiltersUsed always
// carries an "intent" tag, and an "error" tag when a stage degraded.
type ChatResponse struct {
	Reply       string           `json:"reply"`
	Properties  []PropertyRecord `json:"properties"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	PerPage     int              `json:"per_page"`
	FiltersUsed map[string]any   `json:"filters_used"`
}
