package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_index_errors_total",
			Help: "Search index operations that returned an error.",
		},
		[]string{"entity", "op"},
	)

	fallbackQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_fallback_queries_total",
			Help: "Queries answered fully or partially from the database fallback.",
		},
		[]string{"entity"},
	)

	mergedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_merged_pages_total",
			Help: "Result pages assembled from both the index and the fallback.",
		},
		[]string{"entity"},
	)

	reindexedDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_reindexed_documents_total",
			Help: "Documents written to the index by the reindex coordinator.",
		},
		[]string{"entity"},
	)

	suggestCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_suggest_cache_hits_total",
			Help: "Suggestion requests served from the redis cache.",
		},
	)
)
