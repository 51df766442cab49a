package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

func TestVerifyCommentAttachment(t *testing.T) {
	ts := time.Date(2020, 2, 29, 8, 0, 0, 0, time.UTC)
	newArticle := func() *entity.Article {
		return entity.NewArticle(2, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), "t", "p", "h", "i")
	}

	tests := []struct {
		name    string
		comment func() *entity.Comment
		wantErr bool
	}{
		{
			name: "attached via MakeComment",
			comment: func() *entity.Comment {
				return entity.MakeComment("Trump's onto it!", entity.NewUser("thorke", "h"), newArticle(), ts)
			},
		},
		{
			name:    "nil comment",
			comment: func() *entity.Comment { return nil },
			wantErr: true,
		},
		{
			name: "no user",
			comment: func() *entity.Comment {
				a := newArticle()
				c := entity.NewComment(nil, a, "text", ts)
				a.AddComment(c)
				return c
			},
			wantErr: true,
		},
		{
			name: "attached to user only",
			comment: func() *entity.Comment {
				u := entity.NewUser("thorke", "h")
				c := entity.NewComment(u, newArticle(), "text", ts)
				u.AddComment(c)
				return c
			},
			wantErr: true,
		},
		{
			name: "attached to article only",
			comment: func() *entity.Comment {
				a := newArticle()
				c := entity.NewComment(entity.NewUser("thorke", "h"), a, "text", ts)
				a.AddComment(c)
				return c
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.VerifyCommentAttachment(tt.comment())
			if tt.wantErr {
				assert.ErrorIs(t, err, repository.ErrIntegrity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
