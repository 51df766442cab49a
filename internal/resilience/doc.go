// Package resilience groups the fault tolerance helpers used by the storage layer.
//
//   - circuitbreaker guards relational repository transactions
//   - retry waits out a database that is still starting up
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DBConfig())
//	err := cb.Do(func() error {
//	    return runTransaction()
//	}, repository.ErrIntegrity)
//
//	err = retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
