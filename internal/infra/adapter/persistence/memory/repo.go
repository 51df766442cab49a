// Package memory provides the in-memory implementation of repository.Repository.
//
// Articles are kept in a slice sorted by date, backed by an id index. Tags are
// keyed by name and users by username; both keep insertion order for listing.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// Repo is a thread-safe in-memory repository.
// Reads take the read lock; every add takes the write lock.
type Repo struct {
	mu sync.RWMutex

	articles      []*entity.Article // sorted by Date
	articlesIndex map[int64]*entity.Article
	nextID        int64

	tags      map[string]*entity.Tag
	tagOrder  []string
	users     map[string]*entity.User
	userOrder []string
	comments  []*entity.Comment
}

var _ repository.Repository = (*Repo)(nil)

// NewRepo creates an empty in-memory repository.
func NewRepo() *Repo {
	return &Repo{
		articlesIndex: make(map[int64]*entity.Article),
		nextID:        1,
		tags:          make(map[string]*entity.Tag),
		users:         make(map[string]*entity.User),
	}
}

/* ───────── users ───────── */

func (r *Repo) AddUser(_ context.Context, user *entity.User) error {
	if user == nil {
		return fmt.Errorf("AddUser: %w: nil user", entity.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("AddUser: %w: username %q already stored", repository.ErrIntegrity, user.Username)
	}
	r.users[user.Username] = user
	r.userOrder = append(r.userOrder, user.Username)
	return nil
}

func (r *Repo) GetUser(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[username], nil
}

/* ───────── articles ───────── */

// AddArticle inserts the article after any stored articles of the same date.
// An article without an id is assigned the next free one. The date is
// truncated to its calendar day.
func (r *Repo) AddArticle(_ context.Context, article *entity.Article) error {
	if article == nil {
		return fmt.Errorf("AddArticle: %w: nil article", entity.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if article.ID == 0 {
		article.ID = r.nextID
	}
	if _, exists := r.articlesIndex[article.ID]; exists {
		return fmt.Errorf("AddArticle: %w: article id %d already stored", repository.ErrIntegrity, article.ID)
	}

	article.Date = entity.DateOf(article.Date)
	pos := sort.Search(len(r.articles), func(i int) bool {
		return article.Less(r.articles[i])
	})
	r.articles = slices.Insert(r.articles, pos, article)
	r.articlesIndex[article.ID] = article
	if article.ID >= r.nextID {
		r.nextID = article.ID + 1
	}
	return nil
}

func (r *Repo) GetArticle(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.articlesIndex[id], nil
}

func (r *Repo) GetArticlesByDate(_ context.Context, date time.Time) ([]*entity.Article, error) {
	target := entity.DateOf(date)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matching := make([]*entity.Article, 0)
	pos, found := r.datePosition(target)
	if !found {
		return matching, nil
	}
	for _, a := range r.articles[pos:] {
		if !a.Date.Equal(target) {
			break
		}
		matching = append(matching, a)
	}
	return matching, nil
}

func (r *Repo) GetNumberOfArticles(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.articles), nil
}

func (r *Repo) GetFirstArticle(_ context.Context) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.articles) == 0 {
		return nil, nil
	}
	return r.articles[0], nil
}

func (r *Repo) GetLastArticle(_ context.Context) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.articles) == 0 {
		return nil, nil
	}
	return r.articles[len(r.articles)-1], nil
}

func (r *Repo) GetArticlesByID(_ context.Context, ids []int64) ([]*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	articles := make([]*entity.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.articlesIndex[id]; ok {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func (r *Repo) GetDateOfPreviousArticle(_ context.Context, article *entity.Article) (*time.Time, error) {
	if article == nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := entity.DateOf(article.Date)
	pos, found := r.datePosition(day)
	if !found {
		return nil, nil
	}
	// pos is the first article of that date, so anything before it is strictly earlier.
	for i := pos - 1; i >= 0; i-- {
		if r.articles[i].Date.Before(day) {
			d := r.articles[i].Date
			return &d, nil
		}
	}
	return nil, nil
}

func (r *Repo) GetDateOfNextArticle(_ context.Context, article *entity.Article) (*time.Time, error) {
	if article == nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := entity.DateOf(article.Date)
	pos, found := r.datePosition(day)
	if !found {
		return nil, nil
	}
	for _, a := range r.articles[pos+1:] {
		if a.Date.After(day) {
			d := a.Date
			return &d, nil
		}
	}
	return nil, nil
}

// datePosition returns the leftmost index holding an article dated date.
// found is false when no stored article has that date.
func (r *Repo) datePosition(date time.Time) (int, bool) {
	pos := sort.Search(len(r.articles), func(i int) bool {
		return !r.articles[i].Date.Before(date)
	})
	if pos < len(r.articles) && r.articles[pos].Date.Equal(date) {
		return pos, true
	}
	return pos, false
}

/* ───────── tags ───────── */

func (r *Repo) AddTag(_ context.Context, tag *entity.Tag) error {
	if tag == nil {
		return fmt.Errorf("AddTag: %w: nil tag", entity.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[tag.Name]; exists {
		return fmt.Errorf("AddTag: %w: tag %q already stored", repository.ErrIntegrity, tag.Name)
	}
	r.tags[tag.Name] = tag
	r.tagOrder = append(r.tagOrder, tag.Name)
	return nil
}

func (r *Repo) GetTags(_ context.Context) ([]*entity.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]*entity.Tag, 0, len(r.tagOrder))
	for _, name := range r.tagOrder {
		tags = append(tags, r.tags[name])
	}
	return tags, nil
}

func (r *Repo) GetArticleIDsForTag(_ context.Context, tagName string) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.tags[tagName]
	if !ok {
		return []int64{}, nil
	}
	tagged := tag.TaggedArticles()
	ids := make([]int64, 0, len(tagged))
	for _, a := range tagged {
		ids = append(ids, a.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

/* ───────── comments ───────── */

func (r *Repo) AddComment(_ context.Context, comment *entity.Comment) error {
	if err := repository.VerifyCommentAttachment(comment); err != nil {
		return fmt.Errorf("AddComment: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, comment)
	return nil
}

func (r *Repo) GetComments(_ context.Context) ([]*entity.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := make([]*entity.Comment, len(r.comments))
	copy(comments, r.comments)
	return comments, nil
}
