package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/db"
)

const articleColumns = `a.id, a.date, a.title, a.first_para, a.hyperlink, a.image_hyperlink`

// maxInList bounds IN lists to stay under SQLite's host parameter limit.
const maxInList = 500

type scanner interface {
	Scan(dest ...any) error
}

// scanArticle scans articleColumns after any leading destinations in head.
func scanArticle(row scanner, head ...any) (*entity.Article, error) {
	var (
		id                                int64
		date, title, para, link, imageURL string
	)
	dest := append(head, &id, &date, &title, &para, &link, &imageURL)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return entity.NewArticle(id, day, title, para, link, imageURL), nil
}

// queryArticles runs query and returns the shallow articles it selects.
func queryArticles(ctx context.Context, q querier, query string, args ...any) ([]*entity.Article, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 8)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return articles, nil
}

// hydrateArticles attaches tags and comments (with their users) to articles.
// Tags and users are shared between the articles of one call.
func hydrateArticles(ctx context.Context, q querier, articles []*entity.Article) error {
	byID := make(map[int64]*entity.Article, len(articles))
	ids := make([]any, 0, len(articles))
	for _, a := range articles {
		if _, seen := byID[a.ID]; seen {
			continue
		}
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	tags := make(map[string]*entity.Tag)
	users := make(map[string]*entity.User)
	for start := 0; start < len(ids); start += maxInList {
		chunk := ids[start:min(start+maxInList, len(ids))]
		in := db.Placeholders(len(chunk))

		if err := attachTags(ctx, q, in, chunk, byID, tags); err != nil {
			return err
		}
		if err := attachComments(ctx, q, in, chunk, byID, users); err != nil {
			return err
		}
	}
	return nil
}

func attachTags(ctx context.Context, q querier, in string, ids []any, byID map[int64]*entity.Article, tags map[string]*entity.Tag) error {
	rows, err := q.QueryContext(ctx, `
SELECT at.article_id, t.name
FROM article_tags at
INNER JOIN tags t ON t.id = at.tag_id
WHERE at.article_id IN (`+in+`)
ORDER BY t.id, at.article_id`, ids...)
	if err != nil {
		return fmt.Errorf("tags: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			articleID int64
			name      string
		)
		if err := rows.Scan(&articleID, &name); err != nil {
			return fmt.Errorf("tags: Scan: %w", err)
		}
		tag, ok := tags[name]
		if !ok {
			tag = entity.NewTag(name)
			tags[name] = tag
		}
		article := byID[articleID]
		article.AddTag(tag)
		tag.AddArticle(article)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tags: rows.Err: %w", err)
	}
	return nil
}

func attachComments(ctx context.Context, q querier, in string, ids []any, byID map[int64]*entity.Article, users map[string]*entity.User) error {
	rows, err := q.QueryContext(ctx, `
SELECT c.article_id, c.comment, c.timestamp, u.username, u.password
FROM comments c
INNER JOIN users u ON u.id = c.user_id
WHERE c.article_id IN (`+in+`)
ORDER BY c.id`, ids...)
	if err != nil {
		return fmt.Errorf("comments: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			articleID                   int64
			text, ts, username, pwdHash string
		)
		if err := rows.Scan(&articleID, &text, &ts, &username, &pwdHash); err != nil {
			return fmt.Errorf("comments: Scan: %w", err)
		}
		timestamp, err := parseTimestamp(ts)
		if err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		user, ok := users[username]
		if !ok {
			user = entity.NewUser(username, pwdHash)
			users[username] = user
		}
		attach(entity.NewComment(user, byID[articleID], text, timestamp))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("comments: rows.Err: %w", err)
	}
	return nil
}

// attach registers a hydrated comment on both ends.
func attach(comment *entity.Comment) {
	comment.User.AddComment(comment)
	comment.Article.AddComment(comment)
}

func formatDate(t time.Time) string {
	return entity.DateOf(t).Format(entity.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullDate converts an aggregate date column into the repository's optional date.
func nullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
