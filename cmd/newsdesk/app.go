package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"newsdesk/internal/config"
	"newsdesk/internal/infra/adapter/persistence/instrumented"
	"newsdesk/internal/infra/adapter/persistence/memory"
	"newsdesk/internal/infra/adapter/persistence/sqldb"
	"newsdesk/internal/infra/csvsource"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/internal/service/auth"
	"newsdesk/internal/usecase/news"
	"newsdesk/internal/usecase/populate"
	"newsdesk/pkg/security/password"
)

// app wires one repository into the use cases.
type app struct {
	repo      repository.Repository
	conn      *sql.DB
	dialect   db.Dialect
	ephemeral bool

	news     *news.Service
	auth     *auth.Service
	populate *populate.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var base repository.Repository
	switch cfg.Repository {
	case config.BackendMemory:
		base = memory.NewRepo()
		a.ephemeral = true
	default:
		repo, conn, dialect, err := openRelational(ctx, cfg)
		if err != nil {
			return nil, err
		}
		base, a.conn, a.dialect = repo, conn, dialect
	}

	a.repo = instrumented.New(base, cfg.Repository)
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	a.news = news.NewService(a.repo)
	a.auth = auth.NewService(a.repo, hasher, auth.CredentialRequirements{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		WeakPasswords:     cfg.Auth.WeakPasswords,
	})
	a.populate = populate.NewService(a.repo, csvsource.New(cfg.DataPath), hasher)

	logging.FromContext(ctx).Info("repository ready", slog.String("data_path", cfg.DataPath))
	return a, nil
}

func openRelational(ctx context.Context, cfg *config.Config) (*sqldb.Repo, *sql.DB, db.Dialect, error) {
	dialect, err := db.ParseDialect(cfg.Repository)
	if err != nil {
		return nil, nil, "", err
	}
	dsn := cfg.Database.URL
	if dialect == db.DialectSQLite {
		dsn = cfg.Database.SQLitePath
	}

	conn, err := db.Open(ctx, dialect, dsn, db.ConnectionConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, nil, "", err
	}
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		_ = conn.Close()
		return nil, nil, "", fmt.Errorf("migrate: %w", err)
	}

	var opts []sqldb.Option
	if cfg.Database.CircuitBreaker {
		opts = append(opts, sqldb.WithCircuitBreaker(circuitbreaker.New(circuitbreaker.DBConfig())))
	}
	return sqldb.NewRepo(conn, dialect, opts...), conn, dialect, nil
}

// errNoSchema is returned by reset for backends without a stored schema.
var errNoSchema = errors.New("the memory repository has no schema to reset")

// reset drops every table and recreates an empty schema.
func (a *app) reset(ctx context.Context) error {
	if a.conn == nil {
		return errNoSchema
	}
	if err := db.MigrateDown(ctx, a.conn); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if err := db.Migrate(ctx, a.conn, a.dialect); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logging.FromContext(ctx).Warn("repository reset", slog.String("dialect", string(a.dialect)))
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.conn == nil {
		return
	}
	stats := a.conn.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	if err := a.conn.Close(); err != nil {
		logging.FromContext(ctx).Error("failed to close database", slog.Any("error", err))
	}
}
