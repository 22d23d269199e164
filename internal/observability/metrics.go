package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected authentication attempts by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_auth_failures_total",
		Help: "Total number of rejected authentication attempts by reason",
	}, []string{"reason"})

	// ArticleReads counts article fetches by access path.
	ArticleReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_article_reads_total",
		Help: "Total number of article reads by access path (slug, list, feed)",
	}, []string{"path"})

	// ArticleWrites counts article mutations by operation.
	ArticleWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_article_writes_total",
		Help: "Total number of article mutations by operation",
	}, []string{"operation"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by SQL operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conduit_database_query_latency_seconds",
		Help:    "Database query latency in seconds by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
