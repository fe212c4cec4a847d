package repository

import (
	"context"
	"testing"

	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentIDs(page *pagination.Page[models.Comment]) []uint {
	ids := make([]uint, 0, len(page.Items))
	for _, c := range page.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestCommentRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, testutil.UserOpts{})
	reader := testutil.CreateUser(t, db, testutil.UserOpts{})
	banned := testutil.CreateUser(t, db, testutil.UserOpts{Blocked: true})
	category := testutil.CreateCategory(t, db)
	post := testutil.CreatePost(t, db, author, category, testutil.PostOpts{Published: testutil.BoolPtr(true)})
	other := testutil.CreatePost(t, db, author, category, testutil.PostOpts{Published: testutil.BoolPtr(true)})

	fromReader := testutil.CreateComment(t, db, post, reader)
	fromBanned := testutil.CreateComment(t, db, post, banned)
	elsewhere := testutil.CreateComment(t, db, other, reader)
	bannedElsewhere := testutil.CreateComment(t, db, other, banned)

	tests := []struct {
		name string
		q    CommentQuery
		want []uint
	}{
		{"post listing hides blocked authors", CommentQuery{PostID: post.ID}, []uint{fromReader.ID}},
		{"author listing keeps own comments", CommentQuery{AuthorID: banned.ID}, []uint{bannedElsewhere.ID, fromBanned.ID}},
		{"admin listing shows everything", CommentQuery{}, []uint{bannedElsewhere.ID, elsewhere.ID, fromBanned.ID, fromReader.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.q.Page = allRows
			page, err := repo.List(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, commentIDs(page))
		})
	}

	_, err := repo.List(ctx, CommentQuery{PostID: post.ID, AuthorID: reader.ID, Page: allRows})
	assert.Error(t, err)
}

func TestCommentRepository_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, testutil.UserOpts{})
	category := testutil.CreateCategory(t, db)
	post := testutil.CreatePost(t, db, author, category, testutil.PostOpts{})

	comment := &models.Comment{Title: "First!", Content: "Nice post", PostID: post.ID, AuthorID: author.ID}
	require.NoError(t, repo.Create(ctx, comment))
	require.NotZero(t, comment.ID)

	loaded, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Author)
	require.NotNil(t, loaded.Post)
	assert.Equal(t, post.ID, loaded.Post.ID)

	loaded.Content = "Nice post, edited"
	require.NoError(t, repo.Update(ctx, loaded))
	assert.Equal(t, uint(1), loaded.Version)

	require.NoError(t, repo.Delete(ctx, comment.ID))
	_, err = repo.GetByID(ctx, comment.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.True(t, models.HasCode(repo.Delete(ctx, comment.ID), models.CodeNotFound))
}
