package entity

import (
	"fmt"
	"time"
)

// MakeComment builds a comment and attaches it to both the user and the article.
// A zero timestamp is replaced by the current time.
func MakeComment(text string, user *User, article *Article, timestamp time.Time) *Comment {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	comment := NewComment(user, article, text, timestamp)
	user.AddComment(comment)
	article.AddComment(comment)
	return comment
}

// MakeTagAssociation applies tag to article on both sides.
// It fails with ErrDuplicateTagAssociation, leaving both entities untouched,
// when the tag is already applied to the article.
func MakeTagAssociation(article *Article, tag *Tag) error {
	if tag.IsAppliedTo(article) {
		return fmt.Errorf("%w: tag %q already applied to article %q",
			ErrDuplicateTagAssociation, tag.Name, article.Title)
	}
	article.AddTag(tag)
	tag.AddArticle(article)
	return nil
}
