package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"folio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestTranslateError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, translateError(nil, "Post", 1))

	notFound := translateError(gorm.ErrRecordNotFound, "Post", 7)
	assert.True(t, models.HasCode(notFound, models.CodeNotFound))
	assert.Contains(t, notFound.Error(), "Post with ID 7")

	dup := translateError(&pgconn.PgError{Code: "23505"}, "User", "a@b.c")
	assert.True(t, models.HasCode(dup, models.CodeConflict))

	passthrough := models.NewForbiddenError("nope")
	assert.Same(t, passthrough, translateError(passthrough, "Post", 1))

	other := translateError(errors.New("connection reset"), "Comment", 1)
	assert.False(t, models.HasCode(other, models.CodeNotFound))
	assert.Contains(t, other.Error(), "comment: connection reset")
}

func TestLikePattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%hello%", likePattern("HeLLo"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestCommentRepository_Update_StaleVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE id = $1`)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	comment := &models.Comment{ID: 4, Title: "edited", Content: "edited body", Version: 2}
	err := repo.Update(context.Background(), comment)

	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.Equal(t, uint(2), comment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Update_MissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE id = $1`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.Update(context.Background(), &models.Comment{ID: 9, Title: "x", Content: "y", Version: 1})

	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
