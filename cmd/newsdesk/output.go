package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/usecase/news"
	"newsdesk/internal/usecase/populate"
)

// ArticleOutput is the JSON form of an article.
type ArticleOutput struct {
	ID             int64           `json:"id"`
	Date           string          `json:"date"`
	Title          string          `json:"title"`
	FirstParagraph string          `json:"first_paragraph"`
	Hyperlink      string          `json:"hyperlink"`
	ImageHyperlink string          `json:"image_hyperlink"`
	Tags           []string        `json:"tags"`
	Comments       []CommentOutput `json:"comments"`
}

type CommentOutput struct {
	ArticleID int64     `json:"article_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DateOutput is the JSON form of a day's articles and its neighbors.
type DateOutput struct {
	Date         string          `json:"date"`
	PreviousDate *string         `json:"previous_date"`
	NextDate     *string         `json:"next_date"`
	Articles     []ArticleOutput `json:"articles"`
}

type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, format, args...)
	return err
}

func (p *printer) stats(s populate.Stats) error {
	if p.json {
		return p.encode(s)
	}
	return p.printf("articles: %d\ntags: %d\nusers: %d\ncomments: %d\n", s.Articles, s.Tags, s.Users, s.Comments)
}

func (p *printer) counts(c counts) error {
	if p.json {
		return p.encode(c)
	}
	return p.printf("articles: %d\ntags: %d\ncomments: %d\n", c.Articles, c.Tags, c.Comments)
}

func (p *printer) article(a *entity.Article) error {
	out := toArticleOutput(a)
	if p.json {
		return p.encode(out)
	}
	if err := p.printf("#%d  %s  %s\n", out.ID, out.Date, out.Title); err != nil {
		return err
	}
	if out.FirstParagraph != "" {
		if err := p.printf("    %s\n", out.FirstParagraph); err != nil {
			return err
		}
	}
	if err := p.printf("    %s\n", out.Hyperlink); err != nil {
		return err
	}
	if len(out.Tags) > 0 {
		if err := p.printf("    tags: %s\n", strings.Join(out.Tags, ", ")); err != nil {
			return err
		}
	}
	for _, c := range out.Comments {
		if err := p.printf("    %s  %s: %s\n", c.Timestamp.Format(time.DateTime), c.Username, c.Text); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) articles(articles []*entity.Article) error {
	if p.json {
		out := make([]ArticleOutput, 0, len(articles))
		for _, a := range articles {
			out = append(out, toArticleOutput(a))
		}
		return p.encode(out)
	}
	if len(articles) == 0 {
		return p.printf("no articles\n")
	}
	for _, a := range articles {
		if err := p.printf("#%d  %s  %s\n", a.ID, a.Date.Format(entity.DateLayout), a.Title); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) dateResult(date time.Time, r *news.DateResult) error {
	out := DateOutput{
		Date:         date.Format(entity.DateLayout),
		PreviousDate: formatDate(r.PreviousDate),
		NextDate:     formatDate(r.NextDate),
		Articles:     make([]ArticleOutput, 0, len(r.Articles)),
	}
	for _, a := range r.Articles {
		out.Articles = append(out.Articles, toArticleOutput(a))
	}
	if p.json {
		return p.encode(out)
	}

	if err := p.articles(r.Articles); err != nil {
		return err
	}
	prev, next := "-", "-"
	if out.PreviousDate != nil {
		prev = *out.PreviousDate
	}
	if out.NextDate != nil {
		next = *out.NextDate
	}
	return p.printf("previous: %s  next: %s\n", prev, next)
}

func (p *printer) lines(items []string) error {
	if p.json {
		if items == nil {
			items = []string{}
		}
		return p.encode(items)
	}
	for _, item := range items {
		if err := p.printf("%s\n", item); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) comment(c *entity.Comment) error {
	out := toCommentOutput(c)
	if p.json {
		return p.encode(out)
	}
	return p.printf("comment added to #%d by %s\n", out.ArticleID, out.Username)
}

func (p *printer) user(u *entity.User) error {
	if p.json {
		return p.encode(map[string]string{"username": u.Username})
	}
	return p.printf("ok: %s\n", u.Username)
}

func toArticleOutput(a *entity.Article) ArticleOutput {
	out := ArticleOutput{
		ID:             a.ID,
		Date:           a.Date.Format(entity.DateLayout),
		Title:          a.Title,
		FirstParagraph: a.FirstParagraph,
		Hyperlink:      a.Hyperlink,
		ImageHyperlink: a.ImageHyperlink,
		Tags:           []string{},
		Comments:       []CommentOutput{},
	}
	for _, t := range a.Tags() {
		out.Tags = append(out.Tags, t.Name)
	}
	for _, c := range a.Comments() {
		out.Comments = append(out.Comments, toCommentOutput(c))
	}
	return out
}

func toCommentOutput(c *entity.Comment) CommentOutput {
	out := CommentOutput{Text: c.Text, Timestamp: c.Timestamp}
	if c.User != nil {
		out.Username = c.User.Username
	}
	if c.Article != nil {
		out.ArticleID = c.Article.ID
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(entity.DateLayout)
	return &s
}
