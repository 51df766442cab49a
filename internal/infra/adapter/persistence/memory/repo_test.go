package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/adapter/persistence/memory"
	"newsdesk/internal/repository"
	"newsdesk/internal/repository/repotest"
	"newsdesk/tests/fixtures"
)

func TestRepo_Conformance(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		return memory.NewRepo()
	})
}

func TestRepo_GetUserReturnsStoredInstance(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()
	user := entity.NewUser("Dave", "123456789")
	require.NoError(t, repo.AddUser(ctx, user))

	got, err := repo.GetUser(ctx, "Dave")
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestRepo_AddArticleAssignsMissingID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()
	require.NoError(t, repo.AddArticle(ctx, fixtures.NewTestArticle(fixtures.WithID(10))))

	a := fixtures.NewTestArticle(fixtures.WithID(0), fixtures.WithTitle("no id yet"))
	require.NoError(t, repo.AddArticle(ctx, a))

	assert.Equal(t, int64(11), a.ID)
	got, err := repo.GetArticle(ctx, 11)
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestRepo_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	require.NoError(t, repo.AddArticle(ctx, fixtures.NewTestArticle(fixtures.WithID(1))))
	err := repo.AddArticle(ctx, fixtures.NewTestArticle(fixtures.WithID(1), fixtures.WithTitle("other")))
	assert.ErrorIs(t, err, repository.ErrIntegrity)

	require.NoError(t, repo.AddUser(ctx, entity.NewUser("dave", "a")))
	assert.ErrorIs(t, repo.AddUser(ctx, entity.NewUser("dave", "b")), repository.ErrIntegrity)

	require.NoError(t, repo.AddTag(ctx, entity.NewTag("Health")))
	assert.ErrorIs(t, repo.AddTag(ctx, entity.NewTag("Health")), repository.ErrIntegrity)

	n, err := repo.GetNumberOfArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepo_RejectsNil(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	assert.ErrorIs(t, repo.AddArticle(ctx, nil), entity.ErrInvalidInput)
	assert.ErrorIs(t, repo.AddUser(ctx, nil), entity.ErrInvalidInput)
	assert.ErrorIs(t, repo.AddTag(ctx, nil), entity.ErrInvalidInput)
	assert.ErrorIs(t, repo.AddComment(ctx, nil), repository.ErrIntegrity)
}

func TestRepo_SameDayInsertsStayContiguous(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	dates := []string{"2020-03-01", "2020-02-28", "2020-03-01", "2020-03-05", "2020-03-01", "2020-02-28"}
	for i, d := range dates {
		require.NoError(t, repo.AddArticle(ctx, fixtures.NewTestArticle(
			fixtures.WithID(int64(i+1)), fixtures.WithDate(d), fixtures.WithTitle(d+string(rune('a'+i))),
		)))
	}

	got, err := repo.GetArticlesByDate(ctx, fixtures.Date("2020-03-01"))
	require.NoError(t, err)
	// Same-day articles keep insertion order.
	assert.Equal(t, []int64{1, 3, 5}, []int64{got[0].ID, got[1].ID, got[2].ID})

	first, err := repo.GetFirstArticle(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.ID)
}

func TestRepo_NeighborDatesForUnstoredDate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()
	require.NoError(t, fixtures.Seed(ctx, repo))

	// No stored article on 2020-03-03, so the position lookup fails.
	ghost := fixtures.NewTestArticle(fixtures.WithID(99), fixtures.WithDate("2020-03-03"))

	prev, err := repo.GetDateOfPreviousArticle(ctx, ghost)
	require.NoError(t, err)
	assert.Nil(t, prev)

	next, err := repo.GetDateOfNextArticle(ctx, ghost)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRepo_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			_ = repo.AddArticle(ctx, fixtures.NewTestArticle(
				fixtures.WithID(id), fixtures.WithDate("2020-03-01"), fixtures.WithTitle(string(rune('A'+id))),
			))
		}(int64(i))
		go func() {
			defer wg.Done()
			_, _ = repo.GetArticlesByDate(ctx, fixtures.Date("2020-03-01"))
		}()
	}
	wg.Wait()

	n, err := repo.GetNumberOfArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
