package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests by resolved intent",
		},
		[]string{"intent"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total number of response cache hits by namespace",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total number of response cache misses by namespace",
		},
		[]string{"namespace"},
	)

	ListingRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_client_retries_total",
			Help: "Total number of retried listing API requests",
		},
	)

	ChatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_request_duration_seconds",
			Help: "Duration of chat request processing in seconds",
		},
		[]string{"intent"},
	)
)
