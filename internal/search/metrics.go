package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opKeywordSearch    = "keyword_search"
	opPageMetadata     = "page_metadata"
	opDocumentMetadata = "document_metadata"
	opPageChunks       = "page_chunks"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_index_requests_total",
		Help: "Queries issued against the external search index.",
	}, []string{"operation", "outcome"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_index_request_duration_seconds",
		Help:    "Round-trip latency of search index queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func observeQuery(op string, ok bool, elapsed time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	queryTotal.WithLabelValues(op, outcome).Inc()
	queryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
