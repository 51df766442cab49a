// Package sqldb implements repository.Repository on a relational database.
// One implementation serves both SQLite and PostgreSQL; queries are written
// with '?' placeholders and rebound for the configured dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"newsdesk/internal/infra/db"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/circuitbreaker"
)

// Repo is a relational repository. Every operation runs in its own
// transaction: commit on success, rollback on any failure.
type Repo struct {
	db      *sql.DB
	dialect db.Dialect
	breaker *circuitbreaker.CircuitBreaker
}

// Option configures a Repo.
type Option func(*Repo)

// WithCircuitBreaker routes every transaction through cb. Integrity
// violations pass through without counting as failures.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(r *Repo) { r.breaker = cb }
}

// NewRepo returns a repository over conn. The schema must already exist (db.Migrate).
func NewRepo(conn *sql.DB, dialect db.Dialect, opts ...Option) *Repo {
	r := &Repo{db: conn, dialect: dialect}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.Repository = (*Repo)(nil)

// querier is the subset of *sql.Tx used by the statement helpers.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// tx wraps *sql.Tx and rebinds every query for the dialect.
type tx struct {
	tx      *sql.Tx
	dialect db.Dialect
}

func (t tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

func (t tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// withTx runs fn in a transaction named op.
func (r *Repo) withTx(ctx context.Context, op string, fn func(q querier) error) error {
	run := func() error {
		sqlTx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%s: BeginTx: %w", op, err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = sqlTx.Rollback()
			}
		}()

		if err := fn(tx{tx: sqlTx, dialect: r.dialect}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("%s: Commit: %w", op, err)
		}
		committed = true
		return nil
	}

	if r.breaker == nil {
		return run()
	}
	return r.breaker.Do(run, repository.ErrIntegrity)
}

// exists reports whether query returns a row.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// lookupID returns the id selected by query, or 0 when no row matches.
func lookupID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
