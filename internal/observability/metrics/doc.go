// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Repository operation counts and latency per backend
//   - Loader totals and duration
//   - Database connection pool usage
//
// All metrics are registered with the Prometheus default registry.
//
// Example usage:
//
//	start := time.Now()
//	article, err := repo.GetArticle(ctx, id)
//	metrics.RecordRepositoryOperation("sqlite", "GetArticle", time.Since(start), err, repository.ErrIntegrity)
package metrics
