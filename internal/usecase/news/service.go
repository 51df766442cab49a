package news

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// DateResult holds the articles of one day and the dates of the nearest
// days before and after it that carry articles.
type DateResult struct {
	Articles     []*entity.Article
	PreviousDate *time.Time
	NextDate     *time.Time
}

type Service struct {
	Repo repository.Repository
	// Rand drives GetRandomArticles; nil uses the global source.
	Rand *rand.Rand
}

func NewService(repo repository.Repository) *Service {
	return &Service{Repo: repo}
}

/* ───────── comments ───────── */

// AddComment attaches a new comment by username to the article and stores it.
func (s *Service) AddComment(ctx context.Context, articleID int64, text, username string) (*entity.Comment, error) {
	article, err := s.Repo.GetArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	user, err := s.Repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownUser
	}

	comment := entity.MakeComment(text, user, article, time.Now().UTC())
	if err := s.Repo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

// GetCommentsForArticle returns the comments of an article in insertion order.
func (s *Service) GetCommentsForArticle(ctx context.Context, articleID int64) ([]*entity.Comment, error) {
	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return article.Comments(), nil
}

/* ───────── articles ───────── */

func (s *Service) GetArticle(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	article, err := s.Repo.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func (s *Service) GetFirstArticle(ctx context.Context) (*entity.Article, error) {
	article, err := s.Repo.GetFirstArticle(ctx)
	if err != nil {
		return nil, fmt.Errorf("get first article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func (s *Service) GetLastArticle(ctx context.Context) (*entity.Article, error) {
	article, err := s.Repo.GetLastArticle(ctx)
	if err != nil {
		return nil, fmt.Errorf("get last article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetArticlesByDate returns the day's articles together with the neighboring
// article dates, taken relative to the first article of the day. Both
// neighbor dates are nil when the day has no articles.
func (s *Service) GetArticlesByDate(ctx context.Context, date time.Time) (*DateResult, error) {
	articles, err := s.Repo.GetArticlesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get articles by date: %w", err)
	}
	result := &DateResult{Articles: articles}
	if len(articles) == 0 {
		return result, nil
	}

	first := articles[0]
	if result.PreviousDate, err = s.Repo.GetDateOfPreviousArticle(ctx, first); err != nil {
		return nil, fmt.Errorf("get previous date: %w", err)
	}
	if result.NextDate, err = s.Repo.GetDateOfNextArticle(ctx, first); err != nil {
		return nil, fmt.Errorf("get next date: %w", err)
	}
	return result, nil
}

func (s *Service) GetArticlesByID(ctx context.Context, ids []int64) ([]*entity.Article, error) {
	articles, err := s.Repo.GetArticlesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get articles by id: %w", err)
	}
	return articles, nil
}

// GetRandomArticles picks up to n distinct articles. Candidate ids are drawn
// from 1 through the article count, so sparse id ranges may yield fewer.
func (s *Service) GetRandomArticles(ctx context.Context, n int) ([]*entity.Article, error) {
	count, err := s.Repo.GetNumberOfArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	n = min(n, count)
	if n <= 0 {
		return []*entity.Article{}, nil
	}

	perm := rand.Perm
	if s.Rand != nil {
		perm = s.Rand.Perm
	}
	ids := make([]int64, n)
	for i, p := range perm(count)[:n] {
		ids[i] = int64(p + 1)
	}

	articles, err := s.Repo.GetArticlesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get random articles: %w", err)
	}
	return articles, nil
}

/* ───────── tags ───────── */

func (s *Service) GetArticleIDsForTag(ctx context.Context, tagName string) ([]int64, error) {
	ids, err := s.Repo.GetArticleIDsForTag(ctx, tagName)
	if err != nil {
		return nil, fmt.Errorf("get article ids for tag: %w", err)
	}
	return ids, nil
}

// GetTagNames returns every stored tag name in repository order.
func (s *Service) GetTagNames(ctx context.Context) ([]string, error) {
	tags, err := s.Repo.GetTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names, nil
}
