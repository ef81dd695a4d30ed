// Package metrics registers the Prometheus collectors shared by the
// knowledge service, the sentence dispatcher and the session manager.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path query result labels.
const (
	ResultFound     = "found"
	ResultNotFound  = "not_found"
	ResultTruncated = "truncated"
	ResultInvalid   = "invalid"
)

var (
	// FactsAsserted counts individual facts appended, inverses included.
	FactsAsserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sir_facts_asserted_total",
		Help: "Total facts appended to session fact stores",
	})

	// Sentences counts dispatched sentences by reply kind.
	Sentences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sir_sentences_total",
		Help: "Total sentences handled by reply kind",
	}, []string{"kind"})

	// PathQueries counts path queries by result.
	PathQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sir_path_queries_total",
		Help: "Total path queries by result",
	}, []string{"result"})

	// PathQueryDuration tracks path query latency.
	PathQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sir_path_query_duration_seconds",
		Help:    "Path query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
	})

	// PathQueryVisited tracks how many facts a query traversed.
	PathQueryVisited = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sir_path_query_facts_visited",
		Help:    "Facts traversed per path query",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 500, 1000, 10000},
	})

	// SessionsOpen is the number of live sessions.
	SessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sir_sessions_open",
		Help: "Number of open sessions",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
