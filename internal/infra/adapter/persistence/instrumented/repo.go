// Package instrumented decorates a repository.Repository with Prometheus
// metrics, OpenTelemetry spans and structured logs for every call.
package instrumented

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/repository"
)

// Repo forwards every call to the wrapped repository.
type Repo struct {
	next    repository.Repository
	backend string
}

// New wraps next. backend labels metrics and spans (memory, sqlite, postgres).
func New(next repository.Repository, backend string) *Repo {
	return &Repo{next: next, backend: backend}
}

var _ repository.Repository = (*Repo)(nil)

func observe[T any](ctx context.Context, r *Repo, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "repository."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("repository.backend", r.backend),
			attribute.String("repository.operation", op),
		))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	metrics.RecordRepositoryOperation(r.backend, op, elapsed, err, repository.ErrIntegrity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		logger := logging.WithOperation(logging.FromContext(ctx), r.backend, op)
		if errors.Is(err, repository.ErrIntegrity) || errors.Is(err, entity.ErrInvalidInput) {
			logger.Debug("repository rejected entity", slog.Any("error", err))
		} else {
			logger.Error("repository operation failed",
				slog.Duration("elapsed", elapsed),
				slog.Any("error", err))
		}
	}
	return result, err
}

func observeErr(ctx context.Context, r *Repo, op string, fn func(context.Context) error) error {
	_, err := observe(ctx, r, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (r *Repo) AddUser(ctx context.Context, user *entity.User) error {
	return observeErr(ctx, r, "AddUser", func(ctx context.Context) error {
		return r.next.AddUser(ctx, user)
	})
}

func (r *Repo) GetUser(ctx context.Context, username string) (*entity.User, error) {
	return observe(ctx, r, "GetUser", func(ctx context.Context) (*entity.User, error) {
		return r.next.GetUser(ctx, username)
	})
}

func (r *Repo) AddArticle(ctx context.Context, article *entity.Article) error {
	return observeErr(ctx, r, "AddArticle", func(ctx context.Context) error {
		return r.next.AddArticle(ctx, article)
	})
}

func (r *Repo) GetArticle(ctx context.Context, id int64) (*entity.Article, error) {
	return observe(ctx, r, "GetArticle", func(ctx context.Context) (*entity.Article, error) {
		return r.next.GetArticle(ctx, id)
	})
}

func (r *Repo) GetArticlesByDate(ctx context.Context, date time.Time) ([]*entity.Article, error) {
	return observe(ctx, r, "GetArticlesByDate", func(ctx context.Context) ([]*entity.Article, error) {
		return r.next.GetArticlesByDate(ctx, date)
	})
}

func (r *Repo) GetNumberOfArticles(ctx context.Context) (int, error) {
	return observe(ctx, r, "GetNumberOfArticles", r.next.GetNumberOfArticles)
}

func (r *Repo) GetFirstArticle(ctx context.Context) (*entity.Article, error) {
	return observe(ctx, r, "GetFirstArticle", r.next.GetFirstArticle)
}

func (r *Repo) GetLastArticle(ctx context.Context) (*entity.Article, error) {
	return observe(ctx, r, "GetLastArticle", r.next.GetLastArticle)
}

func (r *Repo) GetArticlesByID(ctx context.Context, ids []int64) ([]*entity.Article, error) {
	return observe(ctx, r, "GetArticlesByID", func(ctx context.Context) ([]*entity.Article, error) {
		return r.next.GetArticlesByID(ctx, ids)
	})
}

func (r *Repo) GetDateOfPreviousArticle(ctx context.Context, article *entity.Article) (*time.Time, error) {
	return observe(ctx, r, "GetDateOfPreviousArticle", func(ctx context.Context) (*time.Time, error) {
		return r.next.GetDateOfPreviousArticle(ctx, article)
	})
}

func (r *Repo) GetDateOfNextArticle(ctx context.Context, article *entity.Article) (*time.Time, error) {
	return observe(ctx, r, "GetDateOfNextArticle", func(ctx context.Context) (*time.Time, error) {
		return r.next.GetDateOfNextArticle(ctx, article)
	})
}

func (r *Repo) AddTag(ctx context.Context, tag *entity.Tag) error {
	return observeErr(ctx, r, "AddTag", func(ctx context.Context) error {
		return r.next.AddTag(ctx, tag)
	})
}

func (r *Repo) GetTags(ctx context.Context) ([]*entity.Tag, error) {
	return observe(ctx, r, "GetTags", r.next.GetTags)
}

func (r *Repo) GetArticleIDsForTag(ctx context.Context, tagName string) ([]int64, error) {
	return observe(ctx, r, "GetArticleIDsForTag", func(ctx context.Context) ([]int64, error) {
		return r.next.GetArticleIDsForTag(ctx, tagName)
	})
}

func (r *Repo) AddComment(ctx context.Context, comment *entity.Comment) error {
	return observeErr(ctx, r, "AddComment", func(ctx context.Context) error {
		return r.next.AddComment(ctx, comment)
	})
}

func (r *Repo) GetComments(ctx context.Context) ([]*entity.Comment, error) {
	return observe(ctx, r, "GetComments", r.next.GetComments)
}
