package sqldb

import (
	"context"
	"fmt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

/* ───────── tags ───────── */

// AddTag stores tag and links every article it is applied to.
// A tagged article that is not stored is an integrity violation.
func (r *Repo) AddTag(ctx context.Context, tag *entity.Tag) error {
	if tag == nil {
		return fmt.Errorf("AddTag: %w: nil tag", entity.ErrInvalidInput)
	}

	return r.withTx(ctx, "AddTag", func(q querier) error {
		stored, err := exists(ctx, q, `SELECT 1 FROM tags WHERE name = ?`, tag.Name)
		if err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		if stored {
			return fmt.Errorf("%w: tag %q already stored", repository.ErrIntegrity, tag.Name)
		}

		var tagID int64
		if err := q.QueryRowContext(ctx,
			`INSERT INTO tags (name) VALUES (?) RETURNING id`, tag.Name).Scan(&tagID); err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}

		for _, article := range tag.TaggedArticles() {
			stored, err := exists(ctx, q, `SELECT 1 FROM articles WHERE id = ?`, article.ID)
			if err != nil {
				return fmt.Errorf("lookup article: %w", err)
			}
			if !stored {
				return fmt.Errorf("%w: tagged article %d not stored", repository.ErrIntegrity, article.ID)
			}
			if err := linkTag(ctx, q, article.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTags returns every tag in insertion order, each carrying its tagged articles.
func (r *Repo) GetTags(ctx context.Context) ([]*entity.Tag, error) {
	var tags []*entity.Tag
	err := r.withTx(ctx, "GetTags", func(q querier) error {
		rows, err := q.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
		if err != nil {
			return fmt.Errorf("QueryContext: %w", err)
		}
		defer func() { _ = rows.Close() }()

		byID := make(map[int64]*entity.Tag)
		tags = make([]*entity.Tag, 0, 8)
		for rows.Next() {
			var (
				id   int64
				name string
			)
			if err := rows.Scan(&id, &name); err != nil {
				return fmt.Errorf("Scan: %w", err)
			}
			tag := entity.NewTag(name)
			byID[id] = tag
			tags = append(tags, tag)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows.Err: %w", err)
		}
		_ = rows.Close()

		return attachTaggedArticles(ctx, q, byID)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func attachTaggedArticles(ctx context.Context, q querier, byID map[int64]*entity.Tag) error {
	rows, err := q.QueryContext(ctx, `
SELECT at.tag_id, `+articleColumns+`
FROM article_tags at
INNER JOIN articles a ON a.id = at.article_id
ORDER BY at.tag_id, a.id`)
	if err != nil {
		return fmt.Errorf("tagged articles: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make(map[int64]*entity.Article)
	for rows.Next() {
		var tagID int64
		scanned, err := scanArticle(rows, &tagID)
		if err != nil {
			return fmt.Errorf("tagged articles: Scan: %w", err)
		}
		article, ok := articles[scanned.ID]
		if !ok {
			article = scanned
			articles[article.ID] = article
		}
		tag := byID[tagID]
		tag.AddArticle(article)
		article.AddTag(tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tagged articles: rows.Err: %w", err)
	}
	return nil
}

func (r *Repo) GetArticleIDsForTag(ctx context.Context, tagName string) ([]int64, error) {
	ids := make([]int64, 0, 8)
	err := r.withTx(ctx, "GetArticleIDsForTag", func(q querier) error {
		rows, err := q.QueryContext(ctx, `
SELECT at.article_id
FROM article_tags at
INNER JOIN tags t ON t.id = at.tag_id
WHERE t.name = ?
ORDER BY at.article_id`, tagName)
		if err != nil {
			return fmt.Errorf("QueryContext: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("Scan: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows.Err: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
