// Package news provides the read and comment use cases over a repository:
// article lookups by id, date and tag, neighbor-date navigation, tag listing,
// random picks and commenting.
package news

import "errors"

// Sentinel errors for news use case operations.
var (
	// ErrArticleNotFound indicates that no article matches the request.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates an article id that is not positive.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrUnknownUser indicates that the commenting user is not registered.
	ErrUnknownUser = errors.New("unknown user")
)
