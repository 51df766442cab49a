package sqldb_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/adapter/persistence/sqldb"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/repository"
	"newsdesk/internal/repository/repotest"
	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/tests/fixtures"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

func newSQLiteRepo(t *testing.T) repository.Repository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DialectSQLite, ":memory:", db.DefaultConnectionConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.DialectSQLite))

	return sqldb.NewRepo(conn, db.DialectSQLite)
}

func newPostgresMock(t *testing.T, opts ...sqldb.Option) (*sqldb.Repo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return sqldb.NewRepo(conn, db.DialectPostgres, opts...), mock
}

func noRows() *sqlmock.Rows { return sqlmock.NewRows([]string{"one"}) }

func oneRow() *sqlmock.Rows { return sqlmock.NewRows([]string{"one"}).AddRow(1) }

/* ──────────────────────────── 1. SQLite ──────────────────────────── */

func TestRepo_SQLite_Conformance(t *testing.T) {
	repotest.Run(t, newSQLiteRepo)
}

func TestRepo_SQLite_AssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.AddArticle(ctx, fixtures.NewTestArticle(fixtures.WithID(10))))

	added := fixtures.NewTestArticle(fixtures.WithID(0), fixtures.WithTitle("no id yet"))
	require.NoError(t, repo.AddArticle(ctx, added))
	assert.Equal(t, int64(11), added.ID)

	got, err := repo.GetArticle(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "no id yet", got.Title)
}

func TestRepo_SQLite_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, fixtures.Seed(ctx, repo))

	err := repo.AddArticle(ctx, fixtures.NewTestArticle(fixtures.WithID(1)))
	assert.ErrorIs(t, err, repository.ErrIntegrity)

	err = repo.AddUser(ctx, entity.NewUser("thorke", "other"))
	assert.ErrorIs(t, err, repository.ErrIntegrity)

	err = repo.AddTag(ctx, entity.NewTag("Health"))
	assert.ErrorIs(t, err, repository.ErrIntegrity)

	n, err := repo.GetNumberOfArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixtures.Articles), n)
}

func TestRepo_SQLite_AddTagRejectsUnstoredArticle(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	tag := entity.NewTag("Sport")
	require.NoError(t, entity.MakeTagAssociation(fixtures.NewTestArticle(fixtures.WithID(99)), tag))

	err := repo.AddTag(ctx, tag)
	assert.ErrorIs(t, err, repository.ErrIntegrity)

	tags, err := repo.GetTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags, "failed AddTag must roll back")
}

func TestRepo_SQLite_AddArticleLinksStoredTags(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, fixtures.Seed(ctx, repo))

	article := fixtures.NewTestArticle(fixtures.WithID(20), fixtures.WithDate("2020-03-10"))
	require.NoError(t, entity.MakeTagAssociation(article, entity.NewTag("World")))
	require.NoError(t, entity.MakeTagAssociation(article, entity.NewTag("Unstored")))
	require.NoError(t, repo.AddArticle(ctx, article))

	ids, err := repo.GetArticleIDsForTag(ctx, "World")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 5, 20}, ids)

	ids, err = repo.GetArticleIDsForTag(ctx, "Unstored")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRepo_SQLite_HydratesOneLevel(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, fixtures.Seed(ctx, repo))

	user, err := repo.GetUser(ctx, "fmercury")
	require.NoError(t, err)
	require.Len(t, user.Comments(), 1)
	comment := user.Comments()[0]
	assert.Equal(t, int64(1), comment.Article.ID)
	assert.True(t, comment.Article.HasComment(comment))
	assert.True(t, comment.Timestamp.Equal(fixtures.Comments[0].Timestamp))

	tags, err := repo.GetTags(ctx)
	require.NoError(t, err)
	for _, tag := range tags {
		for _, a := range tag.TaggedArticles() {
			assert.True(t, a.IsTaggedBy(tag), "%s on article %d", tag.Name, a.ID)
		}
	}
}

/* ──────────────────────────── 2. PostgreSQL ──────────────────────────── */

func TestRepo_Postgres_AddUser(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM users WHERE username = $1`)).
		WithArgs("dave").
		WillReturnRows(noRows())
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES ($1, $2)`)).
		WithArgs("dave", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AddUser(context.Background(), entity.NewUser("dave", "hash")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_AddUserDuplicateRollsBack(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM users WHERE username = $1`)).
		WithArgs("dave").
		WillReturnRows(oneRow())
	mock.ExpectRollback()

	err := repo.AddUser(context.Background(), entity.NewUser("dave", "hash"))
	assert.ErrorIs(t, err, repository.ErrIntegrity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_AddArticleWithID(t *testing.T) {
	repo, mock := newPostgresMock(t)
	article := fixtures.NewTestArticle(fixtures.WithID(5), fixtures.WithDate("2020-03-01"), fixtures.WithTitle("t"))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM articles WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(noRows())
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO articles (id, date, title, first_para, hyperlink, image_hyperlink) VALUES ($1, $2, $3, $4, $5, $6)`)).
		WithArgs(int64(5), "2020-03-01", "t", article.FirstParagraph, article.Hyperlink, article.ImageHyperlink).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT setval(pg_get_serial_sequence('articles', 'id')`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AddArticle(context.Background(), article))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_AddArticleReturningID(t *testing.T) {
	repo, mock := newPostgresMock(t)
	article := fixtures.NewTestArticle(fixtures.WithID(0), fixtures.WithDate("2020-03-01"))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	require.NoError(t, repo.AddArticle(context.Background(), article))
	assert.Equal(t, int64(42), article.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_GetArticleNotFound(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM articles a WHERE a.id = $1`)).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "title", "first_para", "hyperlink", "image_hyperlink"}))
	mock.ExpectCommit()

	got, err := repo.GetArticle(context.Background(), 101)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_AddCommentUnknownArticleRollsBack(t *testing.T) {
	repo, mock := newPostgresMock(t)

	user := entity.NewUser("thorke", "hash")
	article := fixtures.NewTestArticle(fixtures.WithID(77))
	comment := entity.MakeComment("hello", user, article, time.Date(2020, 3, 2, 9, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE username = $1`)).
		WithArgs("thorke").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM articles WHERE id = $1`)).
		WithArgs(int64(77)).
		WillReturnRows(noRows())
	mock.ExpectRollback()

	err := repo.AddComment(context.Background(), comment)
	assert.ErrorIs(t, err, repository.ErrIntegrity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_BackendErrorRollsBack(t *testing.T) {
	repo, mock := newPostgresMock(t)
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM articles`)).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.GetNumberOfArticles(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, repository.ErrIntegrity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		Name:             "test-db",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 1.0,
		MinRequests:      2,
	})
}

func TestRepo_Postgres_CircuitBreakerOpens(t *testing.T) {
	cb := newBreaker()
	repo, mock := newPostgresMock(t, sqldb.WithCircuitBreaker(cb))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
		_, err := repo.GetTags(ctx)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	}
	assert.True(t, cb.IsOpen())

	_, err := repo.GetTags(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Postgres_CircuitBreakerIgnoresIntegrityViolations(t *testing.T) {
	cb := newBreaker()
	repo, mock := newPostgresMock(t, sqldb.WithCircuitBreaker(cb))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM tags WHERE name = $1`)).WillReturnRows(oneRow())
		mock.ExpectRollback()
		assert.ErrorIs(t, repo.AddTag(ctx, entity.NewTag("Health")), repository.ErrIntegrity)
	}
	assert.False(t, cb.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}
