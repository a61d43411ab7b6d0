package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseLooseJSON parses JSON that may arrive slightly mangled from upstream:
// double-encoded (a JSON value inside a string field), wrapped in surrounding
// text, or carrying trailing commas. Listing payloads ship image lists in all
// of these shapes.
func ParseLooseJSON(input string, target interface{}) error {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\uFEFF"))
	if s == "" {
		return fmt.Errorf("empty input")
	}

	// Direct parse first, the common case.
	if err := json.Unmarshal([]byte(s), target); err == nil {
		return nil
	}

	// Double-encoded: the whole value is a JSON string holding JSON.
	var inner string
	if err := json.Unmarshal([]byte(s), &inner); err == nil && inner != "" {
		if err := json.Unmarshal([]byte(inner), target); err == nil {
			return nil
		}
		s = inner
	}

	// JSON embedded in surrounding text.
	if extracted := extractJSONValue(s); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
		// Last resort: strip trailing commas before closing delimiters.
		cleaned := trailingCommaRe.ReplaceAllString(extracted, "$1")
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", Truncate(input, 100))
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// extractJSONValue returns the first balanced JSON object or array in s.
func extractJSONValue(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	// Whichever delimiter appears first wins.
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if extracted := extractBalanced(s[arrStart:], '[', ']'); extracted != "" {
			return extracted
		}
	}
	if objStart >= 0 {
		if extracted := extractBalanced(s[objStart:], '{', '}'); extracted != "" {
			return extracted
		}
	}
	return ""
}

// extractBalanced walks the input tracking brace depth, string state and
// escapes, returning the first balanced span.
func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// Truncate shortens s to maxLen bytes with an ellipsis.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
