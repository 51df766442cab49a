// Package repotest holds the behavioral suite every repository.Repository
// implementation must pass. Backends call Run from their own tests.
package repotest

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
	"newsdesk/tests/fixtures"
)

// Factory returns a fresh, empty repository for each subtest.
type Factory func(t *testing.T) repository.Repository

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	seeded := func(t *testing.T) repository.Repository {
		t.Helper()
		repo := newRepo(t)
		require.NoError(t, fixtures.Seed(context.Background(), repo))
		return repo
	}

	t.Run("EmptyStore", func(t *testing.T) { testEmptyStore(t, newRepo(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, seeded(t)) })
	t.Run("Articles", func(t *testing.T) { testArticles(t, seeded(t)) })
	t.Run("ArticlesByDate", func(t *testing.T) { testArticlesByDate(t, seeded(t)) })
	t.Run("ArticlesByID", func(t *testing.T) { testArticlesByID(t, seeded(t)) })
	t.Run("NeighborDates", func(t *testing.T) { testNeighborDates(t, seeded(t)) })
	t.Run("DatesTruncateToCalendarDay", func(t *testing.T) { testDatesTruncateToCalendarDay(t, newRepo(t)) })
	t.Run("Tags", func(t *testing.T) { testTags(t, seeded(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, seeded(t)) })
	t.Run("OrderingUnderShuffledInserts", func(t *testing.T) { testShuffledInserts(t, newRepo(t)) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, newRepo(t)) })
}

func testEmptyStore(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	n, err := repo.GetNumberOfArticles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	first, err := repo.GetFirstArticle(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	last, err := repo.GetLastArticle(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	byDate, err := repo.GetArticlesByDate(ctx, fixtures.Date("2020-02-28"))
	require.NoError(t, err)
	assert.NotNil(t, byDate)
	assert.Empty(t, byDate)

	prev, err := repo.GetDateOfPreviousArticle(ctx, fixtures.NewTestArticle())
	require.NoError(t, err)
	assert.Nil(t, prev)

	tags, err := repo.GetTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	comments, err := repo.GetComments(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func testUsers(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.AddUser(ctx, entity.NewUser("Dave", "123456789")))

	got, err := repo.GetUser(ctx, "Dave")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dave", got.Username)
	assert.Equal(t, "123456789", got.Password)

	fmercury, err := repo.GetUser(ctx, "fmercury")
	require.NoError(t, err)
	assert.True(t, fmercury.Equal(entity.NewUser("fmercury", "anything")))

	missing, err := repo.GetUser(ctx, "prince")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testArticles(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	n, err := repo.GetNumberOfArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixtures.Articles), n)

	article, err := repo.GetArticle(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "Coronavirus: First case of virus in New Zealand", article.Title)
	assert.True(t, article.IsTaggedBy(entity.NewTag("Health")))
	assert.True(t, article.IsTaggedBy(entity.NewTag("New Zealand")))
	assert.False(t, article.IsTaggedBy(entity.NewTag("World")))

	commenters := map[string]string{}
	for _, c := range article.Comments() {
		commenters[c.Text] = c.User.Username
	}
	assert.Equal(t, map[string]string{
		"Oh no, COVID-19 has hit New Zealand": "fmercury",
		"Yeah Freddie, bad news":              "thorke",
	}, commenters)

	missing, err := repo.GetArticle(ctx, 101)
	require.NoError(t, err)
	assert.Nil(t, missing)

	added := fixtures.NewTestArticle(fixtures.WithID(7), fixtures.WithDate("2020-03-09"),
		fixtures.WithTitle("Second US coronavirus cruise tests negative amid delays and cancellations"))
	require.NoError(t, repo.AddArticle(ctx, added))

	got, err := repo.GetArticle(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(added))
	assert.Equal(t, int64(7), got.ID)

	first, err := repo.GetFirstArticle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Coronavirus: First case of virus in New Zealand", first.Title)

	last, err := repo.GetLastArticle(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), last.ID)
}

func testArticlesByDate(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	articles, err := repo.GetArticlesByDate(ctx, fixtures.Date("2020-03-01"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3, 4, 5}, ids(articles))

	// Time of day is ignored.
	articles, err = repo.GetArticlesByDate(ctx, fixtures.Date("2020-02-28").Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(articles))

	articles, err = repo.GetArticlesByDate(ctx, fixtures.Date("2020-03-08"))
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func testArticlesByID(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	articles, err := repo.GetArticlesByID(ctx, []int64{2, 5, 6})
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "Covid 19 coronavirus: US deaths double in two days, Trump says quarantine not necessary", articles[0].Title)
	assert.Equal(t, "Australia's first coronavirus fatality as man dies in Perth", articles[1].Title)
	assert.Equal(t, "Coronavirus: Death confirmed as six more test positive in NSW", articles[2].Title)

	articles, err = repo.GetArticlesByID(ctx, []int64{2, 9})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(articles))

	articles, err = repo.GetArticlesByID(ctx, []int64{0, 9})
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)

	articles, err = repo.GetArticlesByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func testNeighborDates(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	get := func(id int64) *entity.Article {
		a, err := repo.GetArticle(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, a)
		return a
	}

	tests := []struct {
		name string
		id   int64
		prev string
		next string
	}{
		{name: "first article", id: 1, prev: "", next: "2020-02-29"},
		{name: "middle article", id: 2, prev: "2020-02-28", next: "2020-03-01"},
		{name: "duplicated date skips own day", id: 4, prev: "2020-02-29", next: "2020-03-05"},
		{name: "another article on the duplicated date", id: 3, prev: "2020-02-29", next: "2020-03-05"},
		{name: "last article", id: 6, prev: "2020-03-01", next: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := get(tt.id)

			prev, err := repo.GetDateOfPreviousArticle(ctx, article)
			require.NoError(t, err)
			assertDate(t, tt.prev, prev)

			next, err := repo.GetDateOfNextArticle(ctx, article)
			require.NoError(t, err)
			assertDate(t, tt.next, next)
		})
	}
}

func testDatesTruncateToCalendarDay(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	afternoon := fixtures.NewTestArticle(fixtures.WithID(1), fixtures.WithTitle("afternoon"))
	afternoon.Date = time.Date(2020, 2, 28, 15, 0, 0, 0, time.UTC)
	morning := fixtures.NewTestArticle(fixtures.WithID(2), fixtures.WithTitle("morning"))
	morning.Date = time.Date(2020, 2, 29, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddArticle(ctx, morning))
	require.NoError(t, repo.AddArticle(ctx, afternoon))

	got, err := repo.GetArticlesByDate(ctx, fixtures.Date("2020-02-28"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))
	assert.True(t, fixtures.Date("2020-02-28").Equal(got[0].Date), "stored date %v", got[0].Date)

	got, err = repo.GetArticlesByDate(ctx, time.Date(2020, 2, 29, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(got))

	// neighbor lookups accept a query article dated off midnight
	query := fixtures.NewTestArticle(fixtures.WithID(1))
	query.Date = time.Date(2020, 2, 28, 22, 30, 0, 0, time.UTC)
	next, err := repo.GetDateOfNextArticle(ctx, query)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, fixtures.Date("2020-02-29").Equal(*next), "next date %v", *next)

	query.Date = time.Date(2020, 2, 29, 18, 0, 0, 0, time.UTC)
	prev, err := repo.GetDateOfPreviousArticle(ctx, query)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, fixtures.Date("2020-02-28").Equal(*prev), "previous date %v", *prev)

	first, err := repo.GetFirstArticle(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
}

func testTags(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	tags, err := repo.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 4)

	counts := map[string]int{}
	for _, tag := range tags {
		counts[tag.Name] = tag.NumberOfTaggedArticles()
	}
	assert.Equal(t, map[string]int{"New Zealand": 3, "Health": 2, "World": 3, "Politics": 1}, counts)

	nz, err := repo.GetArticleIDsForTag(ctx, "New Zealand")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, nz)

	unknown, err := repo.GetArticleIDsForTag(ctx, "United States")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	require.NoError(t, repo.AddTag(ctx, entity.NewTag("Motoring")))
	tags, err = repo.GetTags(ctx)
	require.NoError(t, err)
	assert.True(t, containsTag(tags, "Motoring"))

	unused, err := repo.GetArticleIDsForTag(ctx, "Motoring")
	require.NoError(t, err)
	assert.NotNil(t, unused)
	assert.Empty(t, unused)
}

func testComments(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	comments, err := repo.GetComments(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	user, err := repo.GetUser(ctx, "thorke")
	require.NoError(t, err)
	article, err := repo.GetArticle(ctx, 2)
	require.NoError(t, err)

	comment := entity.MakeComment("Trump's onto it!", user, article, time.Date(2020, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.AddComment(ctx, comment))

	comments, err = repo.GetComments(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 3)
	assert.True(t, containsComment(comments, comment))

	t.Run("rejects a comment without a user", func(t *testing.T) {
		article, err := repo.GetArticle(ctx, 2)
		require.NoError(t, err)
		orphan := entity.NewComment(nil, article, "Trump's onto it!", time.Now())
		article.AddComment(orphan)

		err = repo.AddComment(ctx, orphan)
		assert.ErrorIs(t, err, repository.ErrIntegrity)
		assertCommentCount(t, repo, 3)
	})

	t.Run("rejects a comment missing its article attachment", func(t *testing.T) {
		user, err := repo.GetUser(ctx, "thorke")
		require.NoError(t, err)
		article, err := repo.GetArticle(ctx, 2)
		require.NoError(t, err)
		partial := entity.NewComment(user, article, "Half attached", time.Now())
		user.AddComment(partial)

		err = repo.AddComment(ctx, partial)
		assert.ErrorIs(t, err, repository.ErrIntegrity)
		assertCommentCount(t, repo, 3)
	})
}

func testShuffledInserts(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 7))

	base := fixtures.Date("2021-01-01")
	const total = 40
	order := rng.Perm(total)
	for _, i := range order {
		day := base.AddDate(0, 0, i/3) // three articles per day
		a := fixtures.NewTestArticle(
			fixtures.WithID(int64(i+1)),
			fixtures.WithDate(day.Format(entity.DateLayout)),
			fixtures.WithTitle("article "+day.Format(entity.DateLayout)+string(rune('a'+i%3))),
		)
		require.NoError(t, repo.AddArticle(ctx, a))

		first, err := repo.GetFirstArticle(ctx)
		require.NoError(t, err)
		last, err := repo.GetLastArticle(ctx)
		require.NoError(t, err)
		require.False(t, a.Date.Before(first.Date), "first article must be the earliest")
		require.False(t, a.Date.After(last.Date), "last article must be the latest")
	}

	first, err := repo.GetFirstArticle(ctx)
	require.NoError(t, err)
	assert.True(t, first.Date.Equal(base))

	last, err := repo.GetLastArticle(ctx)
	require.NoError(t, err)
	assert.True(t, last.Date.Equal(base.AddDate(0, 0, (total-1)/3)))

	for d := 0; d <= (total-1)/3; d++ {
		day := base.AddDate(0, 0, d)
		got, err := repo.GetArticlesByDate(ctx, day)
		require.NoError(t, err)
		want := 3
		if d == (total-1)/3 {
			want = total - 3*d
		}
		assert.Len(t, got, want, "articles on %s", day.Format(entity.DateLayout))
		for _, a := range got {
			assert.True(t, a.Date.Equal(day))
		}
	}
}

func testScenario(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	a1 := fixtures.NewTestArticle(fixtures.WithID(1), fixtures.WithDate("2020-02-28"), fixtures.WithTitle("one"))
	a2 := fixtures.NewTestArticle(fixtures.WithID(2), fixtures.WithDate("2020-02-29"), fixtures.WithTitle("two"))
	a3 := fixtures.NewTestArticle(fixtures.WithID(3), fixtures.WithDate("2020-03-01"), fixtures.WithTitle("three"))
	for _, a := range []*entity.Article{a1, a2, a3} {
		require.NoError(t, repo.AddArticle(ctx, a))
	}
	health, nz := entity.NewTag("Health"), entity.NewTag("New Zealand")
	for _, tag := range []*entity.Tag{health, nz} {
		require.NoError(t, entity.MakeTagAssociation(a1, tag))
		require.NoError(t, repo.AddTag(ctx, tag))
	}

	byDate, err := repo.GetArticlesByDate(ctx, fixtures.Date("2020-02-28"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(byDate))

	stored1, err := repo.GetArticle(ctx, 1)
	require.NoError(t, err)
	next, err := repo.GetDateOfNextArticle(ctx, stored1)
	require.NoError(t, err)
	assertDate(t, "2020-02-29", next)

	tagged, err := repo.GetArticleIDsForTag(ctx, "Health")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, tagged)

	batch, err := repo.GetArticlesByID(ctx, []int64{1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(batch))

	err = entity.MakeTagAssociation(a1, health)
	assert.ErrorIs(t, err, entity.ErrDuplicateTagAssociation)
	assert.True(t, a1.IsTaggedBy(health))
	assert.True(t, health.IsAppliedTo(a1))
}

func ids(articles []*entity.Article) []int64 {
	out := make([]int64, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func assertDate(t *testing.T, want string, got *time.Time) {
	t.Helper()
	if want == "" {
		assert.Nil(t, got)
		return
	}
	if assert.NotNil(t, got) {
		assert.Equal(t, want, got.Format(entity.DateLayout))
	}
}

func assertCommentCount(t *testing.T, repo repository.Repository, want int) {
	t.Helper()
	comments, err := repo.GetComments(context.Background())
	require.NoError(t, err)
	assert.Len(t, comments, want)
}

func containsTag(tags []*entity.Tag, name string) bool {
	for _, tag := range tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

func containsComment(comments []*entity.Comment, want *entity.Comment) bool {
	for _, c := range comments {
		if c.Equal(want) {
			return true
		}
	}
	return false
}
