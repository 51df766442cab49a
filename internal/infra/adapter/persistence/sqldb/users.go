package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

/* ───────── users ───────── */

func (r *Repo) AddUser(ctx context.Context, user *entity.User) error {
	if user == nil {
		return fmt.Errorf("AddUser: %w: nil user", entity.ErrInvalidInput)
	}

	return r.withTx(ctx, "AddUser", func(q querier) error {
		stored, err := exists(ctx, q, `SELECT 1 FROM users WHERE username = ?`, user.Username)
		if err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		if stored {
			return fmt.Errorf("%w: username %q already stored", repository.ErrIntegrity, user.Username)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO users (username, password) VALUES (?, ?)`, user.Username, user.Password); err != nil {
			return fmt.Errorf("ExecContext: %w", err)
		}
		return nil
	})
}

// GetUser returns the user with its comments, each pointing at a shallow article.
func (r *Repo) GetUser(ctx context.Context, username string) (*entity.User, error) {
	var user *entity.User
	err := r.withTx(ctx, "GetUser", func(q querier) error {
		var (
			id       int64
			name     string
			password string
		)
		err := q.QueryRowContext(ctx,
			`SELECT id, username, password FROM users WHERE username = ?`, username).Scan(&id, &name, &password)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("QueryRowContext: %w", err)
		}
		user = entity.NewUser(name, password)
		return attachUserComments(ctx, q, id, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func attachUserComments(ctx context.Context, q querier, userID int64, user *entity.User) error {
	rows, err := q.QueryContext(ctx, `
SELECT c.comment, c.timestamp, `+articleColumns+`
FROM comments c
INNER JOIN articles a ON a.id = c.article_id
WHERE c.user_id = ?
ORDER BY c.id`, userID)
	if err != nil {
		return fmt.Errorf("comments: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make(map[int64]*entity.Article)
	for rows.Next() {
		var text, ts string
		scanned, err := scanArticle(rows, &text, &ts)
		if err != nil {
			return fmt.Errorf("comments: Scan: %w", err)
		}
		timestamp, err := parseTimestamp(ts)
		if err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		article, ok := articles[scanned.ID]
		if !ok {
			article = scanned
			articles[article.ID] = article
		}
		attach(entity.NewComment(user, article, text, timestamp))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("comments: rows.Err: %w", err)
	}
	return nil
}
