package entity

import (
	"fmt"
	"time"
)

// Comment is a user's remark on an article.
// It is valid only once attached to both its User and its Article.
type Comment struct {
	User      *User
	Article   *Article
	Text      string
	Timestamp time.Time
}

// NewComment builds a detached comment. Use MakeComment to build and attach.
func NewComment(user *User, article *Article, text string, timestamp time.Time) *Comment {
	return &Comment{User: user, Article: article, Text: text, Timestamp: timestamp}
}

// Equal compares user, article, text and timestamp.
func (c *Comment) Equal(other *Comment) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.User.Equal(other.User) &&
		c.Article.Equal(other.Article) &&
		c.Text == other.Text &&
		c.Timestamp.Equal(other.Timestamp)
}

func (c *Comment) String() string {
	username := ""
	if c.User != nil {
		username = c.User.Username
	}
	return fmt.Sprintf("<Comment %s %s>", username, c.Timestamp.Format(time.RFC3339))
}
