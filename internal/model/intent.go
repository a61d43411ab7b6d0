package model

// Intent is the coarse category a query is routed under.
type Intent string

const (
	IntentGreeting     Intent = "GREETING"
	IntentProperty     Intent = "PROPERTY"
	IntentCompany      Intent = "COMPANY"
	IntentOutOfContext Intent = "OUT_OF_CONTEXT"
)

// ValidIntent reports whether s is one of the four routing labels.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentGreeting, IntentProperty, IntentCompany, IntentOutOfContext:
		return true
	}
	return false
}

// IntentResult represents a classification verdict. Method identifies which
// rule or fallback decided it, e.g. "pattern", "keyword_count", "llm".
type IntentResult struct {
	Intent Intent `json:"intent"`
	Method string `json:"method"`
}
