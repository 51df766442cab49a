// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Repository metrics track every call made through repository.Repository
var (
	// RepositoryOperationsTotal counts repository calls by backend, operation, and status
	RepositoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_operations_total",
			Help: "Total number of repository operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// RepositoryOperationDuration measures repository call duration in seconds
	RepositoryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_operation_duration_seconds",
			Help:    "Repository operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"backend", "operation"},
	)
)

// Loader metrics track the state produced by the populator
var (
	ArticlesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repository_articles_loaded",
			Help: "Number of articles stored by the last load",
		},
	)

	TagsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repository_tags_loaded",
			Help: "Number of tags stored by the last load",
		},
	)

	UsersLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repository_users_loaded",
			Help: "Number of users stored by the last load",
		},
	)

	CommentsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repository_comments_loaded",
			Help: "Number of comments stored by the last load",
		},
	)

	// LoadDuration measures how long a full load takes
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "repository_load_duration_seconds",
			Help:    "Time taken to populate a repository from its record source",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

// Database metrics track connection pool usage
var (
	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
