package entity

import "fmt"

// Tag is a label applied to articles. Its name is its natural key.
type Tag struct {
	Name string

	taggedArticles []*Article
}

// NewTag creates a tag with no articles.
func NewTag(name string) *Tag {
	return &Tag{Name: name}
}

// TaggedArticles returns the articles the tag is applied to, in association order.
func (t *Tag) TaggedArticles() []*Article {
	out := make([]*Article, len(t.taggedArticles))
	copy(out, t.taggedArticles)
	return out
}

func (t *Tag) NumberOfTaggedArticles() int { return len(t.taggedArticles) }

// IsAppliedTo reports whether an equal article is in the tag's article list.
func (t *Tag) IsAppliedTo(article *Article) bool {
	for _, a := range t.taggedArticles {
		if a.Equal(article) {
			return true
		}
	}
	return false
}

// AddArticle appends an article without touching the article's tag set.
// Prefer MakeTagAssociation, which attaches both sides.
func (t *Tag) AddArticle(article *Article) {
	t.taggedArticles = append(t.taggedArticles, article)
}

// Equal compares tags by name.
func (t *Tag) Equal(other *Tag) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name
}

func (t *Tag) String() string {
	return fmt.Sprintf("<Tag %s>", t.Name)
}
