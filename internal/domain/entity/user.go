package entity

import "fmt"

// User is a registered commenter. Username is unique across a repository.
// Password always holds a hash; hashing happens before a User is built.
type User struct {
	Username string
	Password string

	comments []*Comment
}

// NewUser creates a user with no comments.
func NewUser(username, passwordHash string) *User {
	return &User{Username: username, Password: passwordHash}
}

// Comments returns the user's comments, in attachment order.
func (u *User) Comments() []*Comment {
	out := make([]*Comment, len(u.comments))
	copy(out, u.comments)
	return out
}

// HasComment reports whether an equal comment is attached to the user.
func (u *User) HasComment(comment *Comment) bool {
	for _, c := range u.comments {
		if c.Equal(comment) {
			return true
		}
	}
	return false
}

// AddComment appends a comment without touching the comment's article.
// Prefer MakeComment, which attaches both sides.
func (u *User) AddComment(comment *Comment) {
	u.comments = append(u.comments, comment)
}

// Equal compares users by username.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.Username == other.Username
}

// String never renders the password hash.
func (u *User) String() string {
	return fmt.Sprintf("<User %s>", u.Username)
}
