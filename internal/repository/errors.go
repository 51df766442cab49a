package repository

import (
	"errors"
	"fmt"

	"newsdesk/internal/domain/entity"
)

// ErrIntegrity indicates that an entity violates a structural invariant at the storage boundary.
var ErrIntegrity = errors.New("repository integrity violation")

// VerifyCommentAttachment checks that comment is registered on both its user and
// its article. Membership is tested against the entities' own comment lists.
func VerifyCommentAttachment(comment *entity.Comment) error {
	if comment == nil {
		return fmt.Errorf("%w: nil comment", ErrIntegrity)
	}
	if comment.User == nil || !comment.User.HasComment(comment) {
		return fmt.Errorf("%w: comment not correctly attached to a user", ErrIntegrity)
	}
	if comment.Article == nil || !comment.Article.HasComment(comment) {
		return fmt.Errorf("%w: comment not correctly attached to an article", ErrIntegrity)
	}
	return nil
}
