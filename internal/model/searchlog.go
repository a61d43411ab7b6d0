package model

// SearchLogEntry is one resolved chat query, persisted for offline analysis.
// Filters holds the flattened filter set as JSON.
type SearchLogEntry struct {
	ID           string `db:"id" json:"id"`
	SessionID    string `db:"session_id" json:"session_id"`
	Query        string `db:"query" json:"query"`
	Intent       string `db:"intent" json:"intent"`
	IntentMethod string `db:"intent_method" json:"intent_method"`
	Filters      string `db:"filters" json:"filters"`
	ResultCount  int    `db:"result_count" json:"result_count"`
}
