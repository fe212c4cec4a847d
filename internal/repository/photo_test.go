package repository

import (
	"context"
	"fmt"
	"testing"

	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPhotoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, testutil.UserOpts{})
	category := testutil.CreateCategory(t, db)
	post := testutil.CreatePost(t, db, author, category, testutil.PostOpts{})

	var ids []uint
	for i := 0; i < 4; i++ {
		photo := &models.Photo{Filename: fmt.Sprintf("photo-%d.jpg", i), PostID: post.ID}
		require.NoError(t, repo.Create(ctx, photo))
		ids = append(ids, photo.ID)
	}

	page, err := repo.ListByPost(ctx, post.ID, pagination.Request{Page: 1, Size: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, ids[3], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[2].ID)
	assert.Equal(t, 2, page.TotalPages)

	names, err := repo.FilenamesByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photo-0.jpg", "photo-1.jpg", "photo-2.jpg", "photo-3.jpg"}, names)

	photo, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, photo.Post)
	require.NotNil(t, photo.Post.Author)
	assert.Equal(t, author.ID, photo.Post.Author.ID)

	dup := repo.Create(ctx, &models.Photo{Filename: "photo-0.jpg", PostID: post.ID})
	assert.True(t, models.HasCode(dup, models.CodeConflict))

	require.NoError(t, repo.Delete(ctx, ids[0]))
	assert.True(t, models.HasCode(repo.Delete(ctx, ids[0]), models.CodeNotFound))
}
