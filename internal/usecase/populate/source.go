package populate

import "context"

// Stream names, matching the files of the CSV data directory.
const (
	StreamArticles = "news_articles.csv"
	StreamUsers    = "users.csv"
	StreamComments = "comments.csv"
)

// Record is one data row of a record stream. Fields are already trimmed.
type Record struct {
	Stream string
	Line   int
	Fields []string
}

// RecordSource yields the three record streams the loader consumes.
//
// Articles: id, date (YYYY-MM-DD), title, first paragraph, hyperlink,
// image hyperlink, then zero or more tag names.
// Users: row key, username, plaintext password.
// Comments: id, user row key, article id, text, timestamp.
type RecordSource interface {
	Articles(ctx context.Context) ([]Record, error)
	Users(ctx context.Context) ([]Record, error)
	Comments(ctx context.Context) ([]Record, error)
}
