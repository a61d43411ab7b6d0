// Package cache provides the short-lived response cache for the chat
// pipeline. Three namespaces keep verdicts, company answers and listing
// responses from invalidating each other.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Namespace partitions cached values by pipeline stage.
type Namespace string

const (
	NamespaceIntent   Namespace = "intent"
	NamespaceCompany  Namespace = "company"
	NamespaceProperty Namespace = "property"
)

// Store is the cache backend. Both implementations are safe for concurrent
// use. Get returns false on miss or expiry; Set never fails visibly, a cache
// write error only costs a later recompute.
type Store interface {
	Get(ctx context.Context, ns Namespace, key string) ([]byte, bool)
	Set(ctx context.Context, ns Namespace, key string, value []byte, ttl time.Duration)
}

// Key derives a cache key from the query and any extra discriminators (for
// listing responses, the filter fingerprint and page). The query is
// normalized first so trivial whitespace and casing differences share one
// entry.
func Key(query string, extra ...string) string {
	parts := append([]string{normalize(query)}, extra...)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

func normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
