package metrics

import (
	"errors"
	"time"
)

// Status labels for repository_operations_total.
const (
	StatusSuccess   = "success"
	StatusIntegrity = "integrity_violation"
	StatusError     = "error"
)

// RecordRepositoryOperation records one repository call. Errors matching
// integrity are counted separately from backend failures.
func RecordRepositoryOperation(backend, operation string, duration time.Duration, err, integrity error) {
	status := StatusSuccess
	switch {
	case err == nil:
	case integrity != nil && errors.Is(err, integrity):
		status = StatusIntegrity
	default:
		status = StatusError
	}
	RepositoryOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	RepositoryOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// UpdateLoadedTotals sets the loader gauges after a successful load.
func UpdateLoadedTotals(articles, tags, users, comments int) {
	ArticlesLoaded.Set(float64(articles))
	TagsLoaded.Set(float64(tags))
	UsersLoaded.Set(float64(users))
	CommentsLoaded.Set(float64(comments))
}

// RecordLoadDuration records the time taken by one full load.
func RecordLoadDuration(duration time.Duration) {
	LoadDuration.Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
