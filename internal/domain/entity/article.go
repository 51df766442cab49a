// Package entity defines the core domain entities of the news platform.
// It contains Article, Tag, User and Comment, the operations that keep their
// associations symmetric, and the domain-specific errors.
package entity

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for article dates.
const DateLayout = time.DateOnly

// Article represents a dated news article.
// ID is zero until the article is assigned one by a loader or a persistent store.
type Article struct {
	ID             int64
	Date           time.Time
	Title          string
	FirstParagraph string
	Hyperlink      string
	ImageHyperlink string

	comments []*Comment
	tags     []*Tag
}

// NewArticle creates an article whose date is normalized to a calendar day.
func NewArticle(id int64, date time.Time, title, firstParagraph, hyperlink, imageHyperlink string) *Article {
	return &Article{
		ID:             id,
		Date:           DateOf(date),
		Title:          title,
		FirstParagraph: firstParagraph,
		Hyperlink:      hyperlink,
		ImageHyperlink: imageHyperlink,
	}
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Comments returns the comments attached to the article, in attachment order.
func (a *Article) Comments() []*Comment {
	out := make([]*Comment, len(a.comments))
	copy(out, a.comments)
	return out
}

// Tags returns the tags applied to the article, in association order.
func (a *Article) Tags() []*Tag {
	out := make([]*Tag, len(a.tags))
	copy(out, a.tags)
	return out
}

func (a *Article) NumberOfComments() int { return len(a.comments) }

func (a *Article) NumberOfTags() int { return len(a.tags) }

// IsTaggedBy reports whether a tag with the same name is applied to the article.
func (a *Article) IsTaggedBy(tag *Tag) bool {
	for _, t := range a.tags {
		if t.Equal(tag) {
			return true
		}
	}
	return false
}

func (a *Article) IsTagged() bool { return len(a.tags) > 0 }

// HasComment reports whether an equal comment is attached to the article.
func (a *Article) HasComment(comment *Comment) bool {
	for _, c := range a.comments {
		if c.Equal(comment) {
			return true
		}
	}
	return false
}

// AddComment appends a comment without touching the comment's user.
// Prefer MakeComment, which attaches both sides.
func (a *Article) AddComment(comment *Comment) {
	a.comments = append(a.comments, comment)
}

// AddTag appends a tag without touching the tag's article list.
// Prefer MakeTagAssociation, which attaches both sides.
func (a *Article) AddTag(tag *Tag) {
	a.tags = append(a.tags, tag)
}

// Equal compares article content. ID, comments and tags are not part of identity.
func (a *Article) Equal(other *Article) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Date.Equal(other.Date) &&
		a.Title == other.Title &&
		a.FirstParagraph == other.FirstParagraph &&
		a.Hyperlink == other.Hyperlink &&
		a.ImageHyperlink == other.ImageHyperlink
}

// Less orders articles by date only; same-day articles are neither less nor greater.
func (a *Article) Less(other *Article) bool {
	return a.Date.Before(other.Date)
}

// Validate checks the fields every stored article must carry.
func (a *Article) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if a.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if a.ID < 0 {
		return &ValidationError{Field: "id", Message: "id must not be negative"}
	}
	return nil
}

func (a *Article) String() string {
	return fmt.Sprintf("<Article %s %s>", a.Date.Format(DateLayout), a.Title)
}
