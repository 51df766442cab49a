// Package populate seeds a repository from the article, user and comment
// record streams. Streams are read concurrently but applied in a fixed
// order: articles, then tags, then users, then comments.
package populate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/repository"
	"newsdesk/pkg/security/password"
)

const (
	articleFields = 6
	userFields    = 3
	commentFields = 5
)

// Stats summarizes what a load stored.
type Stats struct {
	Articles int `json:"articles"`
	Tags     int `json:"tags"`
	Users    int `json:"users"`
	Comments int `json:"comments"`
}

type Service struct {
	Repo   repository.Repository
	Source RecordSource
	Hasher password.Hasher
}

func NewService(repo repository.Repository, source RecordSource, hasher password.Hasher) *Service {
	return &Service{Repo: repo, Source: source, Hasher: hasher}
}

// Populate loads every stream into the repository. It stops at the first
// malformed record or unresolved reference; rows applied before that stay stored.
func (s *Service) Populate(ctx context.Context) (Stats, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	var articleRows, userRows, commentRows []Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		articleRows, err = s.Source.Articles(gctx)
		return err
	})
	g.Go(func() (err error) {
		userRows, err = s.Source.Users(gctx)
		return err
	})
	g.Go(func() (err error) {
		commentRows, err = s.Source.Comments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("read records: %w", err)
	}

	var stats Stats
	var err error
	if stats.Articles, stats.Tags, err = s.loadArticlesAndTags(ctx, articleRows); err != nil {
		return stats, fmt.Errorf("load articles: %w", err)
	}
	users, err := s.loadUsers(ctx, userRows)
	if err != nil {
		return stats, fmt.Errorf("load users: %w", err)
	}
	stats.Users = len(userRows)
	if stats.Comments, err = s.loadComments(ctx, commentRows, users); err != nil {
		return stats, fmt.Errorf("load comments: %w", err)
	}

	elapsed := time.Since(start)
	metrics.UpdateLoadedTotals(stats.Articles, stats.Tags, stats.Users, stats.Comments)
	metrics.RecordLoadDuration(elapsed)
	logger.Info("repository populated",
		slog.Int("articles", stats.Articles),
		slog.Int("tags", stats.Tags),
		slog.Int("users", stats.Users),
		slog.Int("comments", stats.Comments),
		slog.Duration("elapsed", elapsed))
	return stats, nil
}

func (s *Service) loadArticlesAndTags(ctx context.Context, rows []Record) (int, int, error) {
	var tagOrder []string
	tagged := make(map[string][]int64)

	for _, rec := range rows {
		article, tags, err := parseArticle(rec)
		if err != nil {
			return 0, 0, err
		}
		for _, name := range tags {
			if _, seen := tagged[name]; !seen {
				tagOrder = append(tagOrder, name)
			}
			tagged[name] = append(tagged[name], article.ID)
		}
		if err := s.Repo.AddArticle(ctx, article); err != nil {
			return 0, 0, fmt.Errorf("%s line %d: %w", rec.Stream, rec.Line, err)
		}
	}

	for _, name := range tagOrder {
		tag := entity.NewTag(name)
		for _, id := range tagged[name] {
			article, err := s.Repo.GetArticle(ctx, id)
			if err != nil {
				return 0, 0, fmt.Errorf("tag %q: %w", name, err)
			}
			if article == nil {
				return 0, 0, fmt.Errorf("tag %q: %w: article %d", name, ErrUnresolvedReference, id)
			}
			if err := entity.MakeTagAssociation(article, tag); err != nil {
				return 0, 0, fmt.Errorf("tag %q: %w", name, err)
			}
		}
		if err := s.Repo.AddTag(ctx, tag); err != nil {
			return 0, 0, fmt.Errorf("tag %q: %w", name, err)
		}
	}
	return len(rows), len(tagOrder), nil
}

// parseArticle builds an untagged article and returns its distinct tag names.
func parseArticle(rec Record) (*entity.Article, []string, error) {
	f := rec.Fields
	if len(f) < articleFields {
		return nil, nil, recordError(rec, ErrMalformedRecord, "want at least %d fields, got %d", articleFields, len(f))
	}
	id, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil || id <= 0 {
		return nil, nil, recordError(rec, ErrMalformedRecord, "bad article id %q", f[0])
	}
	date, err := time.Parse(entity.DateLayout, f[1])
	if err != nil {
		return nil, nil, recordError(rec, ErrMalformedRecord, "bad date %q", f[1])
	}

	article := entity.NewArticle(id, date, f[2], f[3], f[4], f[5])
	if err := article.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", recordError(rec, ErrMalformedRecord, "article %d", id), err)
	}

	var tags []string
	seen := make(map[string]bool)
	for _, name := range f[articleFields:] {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return article, tags, nil
}

// loadUsers hashes passwords concurrently, then stores users in row order.
// The returned map is keyed by the CSV row key.
func (s *Service) loadUsers(ctx context.Context, rows []Record) (map[string]*entity.User, error) {
	for _, rec := range rows {
		if len(rec.Fields) < userFields || rec.Fields[1] == "" {
			return nil, recordError(rec, ErrMalformedRecord, "want key, username and password")
		}
	}

	hashes := make([]string, len(rows))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rec := range rows {
		g.Go(func() error {
			hash, err := s.Hasher.Hash(rec.Fields[2])
			if err != nil {
				return fmt.Errorf("%s line %d: %w", rec.Stream, rec.Line, err)
			}
			hashes[i] = hash
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make(map[string]*entity.User, len(rows))
	for i, rec := range rows {
		user := entity.NewUser(rec.Fields[1], hashes[i])
		if err := s.Repo.AddUser(ctx, user); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", rec.Stream, rec.Line, err)
		}
		users[rec.Fields[0]] = user
	}
	return users, nil
}

func (s *Service) loadComments(ctx context.Context, rows []Record, users map[string]*entity.User) (int, error) {
	for _, rec := range rows {
		f := rec.Fields
		if len(f) < commentFields {
			return 0, recordError(rec, ErrMalformedRecord, "want at least %d fields, got %d", commentFields, len(f))
		}
		user, ok := users[f[1]]
		if !ok {
			return 0, recordError(rec, ErrUnresolvedReference, "unknown user row key %q", f[1])
		}
		articleID, err := strconv.ParseInt(f[2], 10, 64)
		if err != nil {
			return 0, recordError(rec, ErrMalformedRecord, "bad article id %q", f[2])
		}
		timestamp, err := parseTimestamp(f[4])
		if err != nil {
			return 0, recordError(rec, ErrMalformedRecord, "bad timestamp %q", f[4])
		}

		article, err := s.Repo.GetArticle(ctx, articleID)
		if err != nil {
			return 0, fmt.Errorf("%s line %d: %w", rec.Stream, rec.Line, err)
		}
		if article == nil {
			return 0, recordError(rec, ErrUnresolvedReference, "unknown article id %d", articleID)
		}

		comment := entity.MakeComment(f[3], user, article, timestamp.UTC())
		if err := s.Repo.AddComment(ctx, comment); err != nil {
			return 0, fmt.Errorf("%s line %d: %w", rec.Stream, rec.Line, err)
		}
	}
	return len(rows), nil
}

// timestampLayouts are tried in order before falling back to dateparse.
// Zoneless values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// parseTimestamp reads a comment timestamp. The export formats are matched
// exactly; anything else goes through dateparse, which also accepts
// free-form dates such as "Feb 28, 2020 2:31:26 PM" and reads slashed
// dates month first.
func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseIn(value, time.UTC)
}

// IsRecordError reports whether err was caused by the record data rather than the backend.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrUnresolvedReference)
}
