// Package repository defines the storage contract shared by every backend.
//
// Lookups that find nothing are not errors: single-entity lookups return
// (nil, nil) and list lookups return an empty, non-nil slice. Errors are
// reserved for backend failures and for integrity violations (ErrIntegrity).
package repository

import (
	"context"
	"time"

	"newsdesk/internal/domain/entity"
)

type UserRepository interface {
	AddUser(ctx context.Context, user *entity.User) error
	// GetUser returns (nil, nil) when no user has the given username.
	GetUser(ctx context.Context, username string) (*entity.User, error)
}

type ArticleRepository interface {
	AddArticle(ctx context.Context, article *entity.Article) error
	// GetArticle returns (nil, nil) when the id is unknown.
	GetArticle(ctx context.Context, id int64) (*entity.Article, error)
	// GetArticlesByDate returns every article published on the calendar day of date.
	GetArticlesByDate(ctx context.Context, date time.Time) ([]*entity.Article, error)
	GetNumberOfArticles(ctx context.Context) (int, error)
	// GetFirstArticle returns the earliest article by date, or nil on an empty store.
	GetFirstArticle(ctx context.Context) (*entity.Article, error)
	// GetLastArticle returns the latest article by date, or nil on an empty store.
	GetLastArticle(ctx context.Context) (*entity.Article, error)
	// GetArticlesByID returns the articles for the ids that exist, in request order.
	// Unknown ids are dropped silently.
	GetArticlesByID(ctx context.Context, ids []int64) ([]*entity.Article, error)
	// GetDateOfPreviousArticle returns the date of the nearest article strictly
	// before article's date, or nil if there is none.
	GetDateOfPreviousArticle(ctx context.Context, article *entity.Article) (*time.Time, error)
	// GetDateOfNextArticle returns the date of the nearest article strictly
	// after article's date, or nil if there is none.
	GetDateOfNextArticle(ctx context.Context, article *entity.Article) (*time.Time, error)
}

type TagRepository interface {
	AddTag(ctx context.Context, tag *entity.Tag) error
	GetTags(ctx context.Context) ([]*entity.Tag, error)
	// GetArticleIDsForTag returns ascending article ids, empty for unknown or unused tags.
	GetArticleIDsForTag(ctx context.Context, tagName string) ([]int64, error)
}

type CommentRepository interface {
	// AddComment stores a comment that is attached to both its user and article.
	// Any other comment is rejected with ErrIntegrity and nothing is stored.
	AddComment(ctx context.Context, comment *entity.Comment) error
	GetComments(ctx context.Context) ([]*entity.Comment, error)
}

// Repository is the full capability set any storage backend must satisfy.
type Repository interface {
	UserRepository
	ArticleRepository
	TagRepository
	CommentRepository
}
