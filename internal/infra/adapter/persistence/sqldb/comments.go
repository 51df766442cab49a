package sqldb

import (
	"context"
	"fmt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

/* ───────── comments ───────── */

// AddComment stores a comment whose user and article are both stored.
func (r *Repo) AddComment(ctx context.Context, comment *entity.Comment) error {
	if err := repository.VerifyCommentAttachment(comment); err != nil {
		return fmt.Errorf("AddComment: %w", err)
	}

	return r.withTx(ctx, "AddComment", func(q querier) error {
		userID, err := lookupID(ctx, q, `SELECT id FROM users WHERE username = ?`, comment.User.Username)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if userID == 0 {
			return fmt.Errorf("%w: user %q not stored", repository.ErrIntegrity, comment.User.Username)
		}

		stored, err := exists(ctx, q, `SELECT 1 FROM articles WHERE id = ?`, comment.Article.ID)
		if err != nil {
			return fmt.Errorf("lookup article: %w", err)
		}
		if !stored {
			return fmt.Errorf("%w: article %d not stored", repository.ErrIntegrity, comment.Article.ID)
		}

		if _, err := q.ExecContext(ctx,
			`INSERT INTO comments (user_id, article_id, comment, timestamp) VALUES (?, ?, ?, ?)`,
			userID, comment.Article.ID, comment.Text, formatTimestamp(comment.Timestamp)); err != nil {
			return fmt.Errorf("ExecContext: %w", err)
		}
		return nil
	})
}

// GetComments returns every comment in insertion order with shallow users and articles.
func (r *Repo) GetComments(ctx context.Context) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := r.withTx(ctx, "GetComments", func(q querier) error {
		rows, err := q.QueryContext(ctx, `
SELECT c.comment, c.timestamp, u.username, u.password, `+articleColumns+`
FROM comments c
INNER JOIN users u ON u.id = c.user_id
INNER JOIN articles a ON a.id = c.article_id
ORDER BY c.id`)
		if err != nil {
			return fmt.Errorf("QueryContext: %w", err)
		}
		defer func() { _ = rows.Close() }()

		users := make(map[string]*entity.User)
		articles := make(map[int64]*entity.Article)
		comments = make([]*entity.Comment, 0, 8)
		for rows.Next() {
			var text, ts, username, password string
			scanned, err := scanArticle(rows, &text, &ts, &username, &password)
			if err != nil {
				return fmt.Errorf("Scan: %w", err)
			}
			timestamp, err := parseTimestamp(ts)
			if err != nil {
				return err
			}
			user, ok := users[username]
			if !ok {
				user = entity.NewUser(username, password)
				users[username] = user
			}
			article, ok := articles[scanned.ID]
			if !ok {
				article = scanned
				articles[article.ID] = article
			}
			comment := entity.NewComment(user, article, text, timestamp)
			attach(comment)
			comments = append(comments, comment)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows.Err: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
