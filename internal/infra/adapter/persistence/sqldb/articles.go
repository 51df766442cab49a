package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/repository"
)

/* ───────── articles ───────── */

// AddArticle stores article and links any stored tags already attached to it.
// An article without an id is assigned one by the database.
func (r *Repo) AddArticle(ctx context.Context, article *entity.Article) error {
	if article == nil {
		return fmt.Errorf("AddArticle: %w: nil article", entity.ErrInvalidInput)
	}

	var id int64
	err := r.withTx(ctx, "AddArticle", func(q querier) error {
		var err error
		if id, err = r.insertArticle(ctx, q, article); err != nil {
			return err
		}

		for _, tag := range article.Tags() {
			tagID, err := lookupID(ctx, q, `SELECT id FROM tags WHERE name = ?`, tag.Name)
			if err != nil {
				return fmt.Errorf("lookup tag: %w", err)
			}
			if tagID == 0 {
				continue
			}
			if err := linkTag(ctx, q, id, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	article.ID = id
	article.Date = entity.DateOf(article.Date)
	return nil
}

func (r *Repo) insertArticle(ctx context.Context, q querier, article *entity.Article) (int64, error) {
	args := []any{formatDate(article.Date), article.Title, article.FirstParagraph, article.Hyperlink, article.ImageHyperlink}

	if article.ID == 0 {
		var id int64
		err := q.QueryRowContext(ctx, `
INSERT INTO articles (date, title, first_para, hyperlink, image_hyperlink)
VALUES (?, ?, ?, ?, ?)
RETURNING id`, args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("QueryRowContext: %w", err)
		}
		return id, nil
	}

	stored, err := exists(ctx, q, `SELECT 1 FROM articles WHERE id = ?`, article.ID)
	if err != nil {
		return 0, fmt.Errorf("QueryRowContext: %w", err)
	}
	if stored {
		return 0, fmt.Errorf("%w: article id %d already stored", repository.ErrIntegrity, article.ID)
	}
	if _, err := q.ExecContext(ctx, `
INSERT INTO articles (id, date, title, first_para, hyperlink, image_hyperlink)
VALUES (?, ?, ?, ?, ?, ?)`, append([]any{article.ID}, args...)...); err != nil {
		return 0, fmt.Errorf("ExecContext: %w", err)
	}

	// Explicit ids bypass the serial sequence; move it past them.
	if r.dialect == db.DialectPostgres {
		if _, err := q.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('articles', 'id'), (SELECT MAX(id) FROM articles))`); err != nil {
			return 0, fmt.Errorf("setval: %w", err)
		}
	}
	return article.ID, nil
}

func linkTag(ctx context.Context, q querier, articleID, tagID int64) error {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		articleID, tagID); err != nil {
		return fmt.Errorf("link tag: ExecContext: %w", err)
	}
	return nil
}

func (r *Repo) GetArticle(ctx context.Context, id int64) (*entity.Article, error) {
	var article *entity.Article
	err := r.withTx(ctx, "GetArticle", func(q querier) error {
		a, err := scanArticle(q.QueryRowContext(ctx,
			`SELECT `+articleColumns+` FROM articles a WHERE a.id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		article = a
		return hydrateArticles(ctx, q, []*entity.Article{a})
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (r *Repo) GetArticlesByDate(ctx context.Context, date time.Time) ([]*entity.Article, error) {
	return r.listArticles(ctx, "GetArticlesByDate",
		`SELECT `+articleColumns+` FROM articles a WHERE a.date = ? ORDER BY a.id`, formatDate(date))
}

func (r *Repo) GetNumberOfArticles(ctx context.Context) (int, error) {
	var n int
	err := r.withTx(ctx, "GetNumberOfArticles", func(q querier) error {
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		return nil
	})
	return n, err
}

func (r *Repo) GetFirstArticle(ctx context.Context) (*entity.Article, error) {
	return r.oneArticle(ctx, "GetFirstArticle",
		`SELECT `+articleColumns+` FROM articles a ORDER BY a.date ASC, a.id ASC LIMIT 1`)
}

func (r *Repo) GetLastArticle(ctx context.Context) (*entity.Article, error) {
	return r.oneArticle(ctx, "GetLastArticle",
		`SELECT `+articleColumns+` FROM articles a ORDER BY a.date DESC, a.id DESC LIMIT 1`)
}

func (r *Repo) oneArticle(ctx context.Context, op, query string, args ...any) (*entity.Article, error) {
	articles, err := r.listArticles(ctx, op, query, args...)
	if err != nil || len(articles) == 0 {
		return nil, err
	}
	return articles[0], nil
}

func (r *Repo) listArticles(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	var articles []*entity.Article
	err := r.withTx(ctx, op, func(q querier) error {
		var err error
		if articles, err = queryArticles(ctx, q, query, args...); err != nil {
			return err
		}
		return hydrateArticles(ctx, q, articles)
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// GetArticlesByID returns the stored articles for ids in request order.
func (r *Repo) GetArticlesByID(ctx context.Context, ids []int64) ([]*entity.Article, error) {
	result := make([]*entity.Article, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	wanted := make([]any, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			wanted = append(wanted, id)
		}
	}

	byID := make(map[int64]*entity.Article, len(wanted))
	err := r.withTx(ctx, "GetArticlesByID", func(q querier) error {
		var found []*entity.Article
		for start := 0; start < len(wanted); start += maxInList {
			chunk := wanted[start:min(start+maxInList, len(wanted))]
			articles, err := queryArticles(ctx, q,
				`SELECT `+articleColumns+` FROM articles a WHERE a.id IN (`+db.Placeholders(len(chunk))+`)`, chunk...)
			if err != nil {
				return err
			}
			found = append(found, articles...)
		}
		for _, a := range found {
			byID[a.ID] = a
		}
		return hydrateArticles(ctx, q, found)
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if a, ok := byID[id]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// GetDateOfPreviousArticle returns nil when article's date is not stored.
func (r *Repo) GetDateOfPreviousArticle(ctx context.Context, article *entity.Article) (*time.Time, error) {
	return r.neighborDate(ctx, "GetDateOfPreviousArticle", `
SELECT MAX(date) FROM articles
WHERE date < ? AND EXISTS (SELECT 1 FROM articles WHERE date = ?)`, article)
}

// GetDateOfNextArticle returns nil when article's date is not stored.
func (r *Repo) GetDateOfNextArticle(ctx context.Context, article *entity.Article) (*time.Time, error) {
	return r.neighborDate(ctx, "GetDateOfNextArticle", `
SELECT MIN(date) FROM articles
WHERE date > ? AND EXISTS (SELECT 1 FROM articles WHERE date = ?)`, article)
}

func (r *Repo) neighborDate(ctx context.Context, op, query string, article *entity.Article) (*time.Time, error) {
	if article == nil {
		return nil, nil
	}
	date := formatDate(article.Date)

	var neighbor *time.Time
	err := r.withTx(ctx, op, func(q querier) error {
		var s sql.NullString
		if err := q.QueryRowContext(ctx, query, date, date).Scan(&s); err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		var err error
		neighbor, err = nullDate(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return neighbor, nil
}
