// Package fixtures provides reusable test data for repository, loader and use-case tests.
// The dataset mirrors the CSV files under internal/usecase/populate/testdata so that tests seeding a
// repository directly and tests going through the loader observe the same state.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// ArticleOption is a functional option for customizing test articles.
type ArticleOption func(*entity.Article)

// NewTestArticle creates a valid Article with sensible defaults.
//
// Example:
//
//	a := NewTestArticle()
//	a := NewTestArticle(WithID(7), WithDate("2020-03-09"))
func NewTestArticle(opts ...ArticleOption) *entity.Article {
	a := entity.NewArticle(1, Date("2020-02-28"),
		"Test article",
		"First paragraph of the test article.",
		"https://www.nzherald.co.nz/nz/news/article.cfm?c_id=1",
		"https://www.nzherald.co.nz/resizer/test.jpg",
	)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithID sets the article ID.
func WithID(id int64) ArticleOption {
	return func(a *entity.Article) { a.ID = id }
}

// WithDate sets the article date from an ISO-8601 calendar date.
func WithDate(date string) ArticleOption {
	return func(a *entity.Article) { a.Date = Date(date) }
}

// WithTitle sets the article title.
func WithTitle(title string) ArticleOption {
	return func(a *entity.Article) { a.Title = title }
}

// Date parses an ISO-8601 calendar date and panics on malformed input.
func Date(s string) time.Time {
	d, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad date %q: %v", s, err))
	}
	return d
}

// ArticleRecord describes one fixture article and the tags applied to it.
type ArticleRecord struct {
	ID    int64
	Date  string
	Title string
	Tags  []string
}

// Articles is the fixture article set, in id order.
var Articles = []ArticleRecord{
	{1, "2020-02-28", "Coronavirus: First case of virus in New Zealand", []string{"New Zealand", "Health"}},
	{2, "2020-02-29", "Covid 19 coronavirus: US deaths double in two days, Trump says quarantine not necessary", []string{"World", "Politics"}},
	{3, "2020-03-01", "Coronavirus: Travel restrictions extended to South Korea and northern Italy", []string{"New Zealand", "World"}},
	{4, "2020-03-01", "Coronavirus: Health officials confirm second New Zealand case", []string{"New Zealand", "Health"}},
	{5, "2020-03-01", "Australia's first coronavirus fatality as man dies in Perth", []string{"World"}},
	{6, "2020-03-05", "Coronavirus: Death confirmed as six more test positive in NSW", nil},
}

// TagNames lists fixture tags in first-seen order.
var TagNames = []string{"New Zealand", "Health", "World", "Politics"}

// UserRecord describes one fixture user. RowKey is the CSV row key.
type UserRecord struct {
	RowKey   string
	Username string
	Password string
}

// Users is the fixture user set.
var Users = []UserRecord{
	{"1", "thorke", "cLQ^C#oFXloS"},
	{"2", "fmercury", "mvNNbc1eLA$i"},
	{"3", "mjackson", "JT2sAw8#vU1C"},
}

// CommentRecord describes one fixture comment.
type CommentRecord struct {
	Username  string
	ArticleID int64
	Text      string
	Timestamp time.Time
}

// Comments is the fixture comment set.
var Comments = []CommentRecord{
	{"fmercury", 1, "Oh no, COVID-19 has hit New Zealand", time.Date(2020, 2, 28, 14, 31, 26, 850000000, time.UTC)},
	{"thorke", 1, "Yeah Freddie, bad news", time.Date(2020, 2, 28, 14, 35, 2, 0, time.UTC)},
}

// BuildArticle turns a fixture record into an untagged article.
func BuildArticle(rec ArticleRecord) *entity.Article {
	return entity.NewArticle(rec.ID, Date(rec.Date), rec.Title,
		"First paragraph of "+rec.Title,
		fmt.Sprintf("https://www.nzherald.co.nz/nz/news/article.cfm?objectid=%d", rec.ID),
		fmt.Sprintf("https://www.nzherald.co.nz/resizer/%d.jpg", rec.ID),
	)
}

// Seed stores the fixture dataset in repo without going through the loader.
// Passwords are stored as given; callers that need hashes should use the loader.
func Seed(ctx context.Context, repo repository.Repository) error {
	for _, rec := range Articles {
		if err := repo.AddArticle(ctx, BuildArticle(rec)); err != nil {
			return fmt.Errorf("seed article %d: %w", rec.ID, err)
		}
	}

	for _, name := range TagNames {
		tag := entity.NewTag(name)
		for _, rec := range Articles {
			if !contains(rec.Tags, name) {
				continue
			}
			article, err := repo.GetArticle(ctx, rec.ID)
			if err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
			if err := entity.MakeTagAssociation(article, tag); err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
		}
		if err := repo.AddTag(ctx, tag); err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
	}

	for _, rec := range Users {
		if err := repo.AddUser(ctx, entity.NewUser(rec.Username, rec.Password)); err != nil {
			return fmt.Errorf("seed user %q: %w", rec.Username, err)
		}
	}

	for _, rec := range Comments {
		user, err := repo.GetUser(ctx, rec.Username)
		if err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
		article, err := repo.GetArticle(ctx, rec.ArticleID)
		if err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
		comment := entity.MakeComment(rec.Text, user, article, rec.Timestamp)
		if err := repo.AddComment(ctx, comment); err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
