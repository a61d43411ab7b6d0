package model

// KnowledgeChunk is a titled, attributable fragment of company documentation
// indexed for retrieval. Read-only for the lifetime of the process.
type KnowledgeChunk struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}
