package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingModes(t *testing.T) {
	t.Parallel()

	author := plainUser(1)
	other := plainUser(2)

	assert.Equal(t, repository.ModeMain, MainMode(nil))
	assert.Equal(t, repository.ModeMain, MainMode(other))
	assert.Equal(t, repository.ModeMainAdmin, MainMode(adminUser(9)))

	assert.Equal(t, repository.ModeProfile, ProfileMode(nil, author))
	assert.Equal(t, repository.ModeProfile, ProfileMode(other, author))
	assert.Equal(t, repository.ModeProfileAuthor, ProfileMode(author, author))
	assert.Equal(t, repository.ModeProfileAuthor, ProfileMode(adminUser(9), author))
}

func TestPostService_ListPosts(t *testing.T) {
	t.Parallel()

	s := newTestStack(t, "")
	author := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	admin := testutil.CreateUser(t, s.db, testutil.UserOpts{Admin: true})
	category := testutil.CreateCategory(t, s.db)
	published := testutil.CreatePost(t, s.db, author, category, testutil.PostOpts{Published: testutil.BoolPtr(true), Age: 2 * time.Hour})
	draft := testutil.CreatePost(t, s.db, author, category, testutil.PostOpts{Published: testutil.BoolPtr(false), Age: time.Hour})

	ctx := context.Background()

	page, err := s.posts.ListPosts(ctx, nil, ListPostsInput{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, published.ID, page.Items[0].ID)

	page, err = s.posts.ListPosts(ctx, admin, ListPostsInput{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, draft.ID, page.Items[0].ID)

	page, err = s.posts.ListProfilePosts(ctx, author, author, ListPostsInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = s.posts.ListProfilePosts(ctx, nil, author, ListPostsInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestPostService_GetPost(t *testing.T) {
	t.Parallel()

	s := newTestStack(t, "")
	author := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	stranger := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	admin := testutil.CreateUser(t, s.db, testutil.UserOpts{Admin: true})
	blocked := testutil.CreateUser(t, s.db, testutil.UserOpts{Blocked: true})
	category := testutil.CreateCategory(t, s.db)

	draft := testutil.CreatePost(t, s.db, author, category, testutil.PostOpts{})
	hiddenAuthor := testutil.CreatePost(t, s.db, blocked, category, testutil.PostOpts{Published: testutil.BoolPtr(true)})

	tests := []struct {
		name     string
		actor    *models.User
		postID   uint
		wantCode string
	}{
		{name: "draft by its author", actor: author, postID: draft.ID},
		{name: "draft by admin", actor: admin, postID: draft.ID},
		{name: "draft by stranger", actor: stranger, postID: draft.ID, wantCode: models.CodeHidden},
		{name: "draft anonymously", actor: nil, postID: draft.ID, wantCode: models.CodeHidden},
		{name: "blocked author anonymously", actor: nil, postID: hiddenAuthor.ID, wantCode: models.CodeHidden},
		{name: "blocked author by admin", actor: admin, postID: hiddenAuthor.ID},
		{name: "missing", actor: admin, postID: 9999, wantCode: models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := s.posts.GetPost(context.Background(), tt.actor, tt.postID)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.postID, post.ID)
		})
	}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	s := newTestStack(t, "")
	author := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	category := testutil.CreateCategory(t, s.db)
	testutil.CreateTag(t, s.db, "golang")
	ctx := context.Background()

	post, err := s.posts.CreatePost(ctx, author, CreatePostInput{
		Title:      "  Hello Fiber ",
		Content:    "Routing and middleware.",
		Published:  testutil.BoolPtr(true),
		CategoryID: category.ID,
		Tags:       "GoLang, web, golang",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Fiber", post.Title)
	assert.Equal(t, "hello-fiber", post.Code)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.Category)
	require.Len(t, post.Tags, 2)
	assert.Equal(t, "golang", post.Tags[0].Name)
	assert.Equal(t, "web", post.Tags[1].Name)

	var tagCount int64
	require.NoError(t, s.db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(2), tagCount)

	_, err = s.posts.CreatePost(ctx, nil, CreatePostInput{Title: "anon", Content: "nope", CategoryID: category.ID})
	assertCode(t, err, models.CodeUnauthorized)

	_, err = s.posts.CreatePost(ctx, author, CreatePostInput{Title: "Valid title", Content: "body text", CategoryID: 9999})
	assertCode(t, err, models.CodeValidation)

	_, err = s.posts.CreatePost(ctx, author, CreatePostInput{Title: "x", Content: "body text", CategoryID: category.ID})
	assertCode(t, err, models.CodeValidation)

	cyrillic, err := s.posts.CreatePost(ctx, author, CreatePostInput{
		Title:      strings.Repeat("Щ", 64),
		Content:    "Transliterated title.",
		CategoryID: category.ID,
		Tags:       strings.Repeat("ж", 32),
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(cyrillic.Code), models.PostCodeSize)
	assert.True(t, strings.HasPrefix(cyrillic.Code, "shch"))
	require.Len(t, cyrillic.Tags, 1)
	assert.LessOrEqual(t, len(cyrillic.Tags[0].Code), models.TagCodeSize)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	s := newTestStack(t, "")
	author := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	stranger := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	admin := testutil.CreateUser(t, s.db, testutil.UserOpts{Admin: true})
	category := testutil.CreateCategory(t, s.db)
	moved := testutil.CreateCategory(t, s.db)
	post := testutil.CreatePost(t, s.db, author, category, testutil.PostOpts{
		Published: testutil.BoolPtr(true),
		Tags:      []models.Tag{*testutil.CreateTag(t, s.db, "old-tag")},
	})
	ctx := context.Background()

	input := func(version uint) UpdatePostInput {
		return UpdatePostInput{
			PostID:     post.ID,
			Version:    &version,
			Title:      "Edited title",
			Content:    "Edited content",
			Published:  testutil.BoolPtr(true),
			CategoryID: moved.ID,
			Tags:       "fresh",
		}
	}

	_, err := s.posts.UpdatePost(ctx, stranger, input(0))
	assertCode(t, err, models.CodeForbidden)

	updated, err := s.posts.UpdatePost(ctx, author, input(0))
	require.NoError(t, err)
	assert.Equal(t, "Edited title", updated.Title)
	assert.Equal(t, moved.ID, updated.CategoryID)
	assert.Equal(t, uint(1), updated.Version)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "fresh", updated.Tags[0].Name)

	stale := input(0)
	stale.Tags = "never-linked"
	_, err = s.posts.UpdatePost(ctx, admin, stale)
	assertCode(t, err, models.CodeConflict)

	var orphans int64
	require.NoError(t, s.db.Model(&models.Tag{}).Where("name = ?", "never-linked").Count(&orphans).Error)
	assert.Zero(t, orphans)

	_, err = s.posts.UpdatePost(ctx, admin, input(1))
	require.NoError(t, err)
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	s := newTestStack(t, "")
	author := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	stranger := testutil.CreateUser(t, s.db, testutil.UserOpts{})
	category := testutil.CreateCategory(t, s.db)
	post := testutil.CreatePost(t, s.db, author, category, testutil.PostOpts{Published: testutil.BoolPtr(true)})
	testutil.CreateComment(t, s.db, post, stranger)
	ctx := context.Background()

	photo, err := s.photos.Upload(ctx, author, UploadPhotoInput{PostID: post.ID, Content: noisyPNG(t, 32, 32)})
	require.NoError(t, err)
	require.True(t, s.store.Exists(photo.Filename))

	err = s.posts.DeletePost(ctx, stranger, post.ID)
	assertCode(t, err, models.CodeForbidden)

	require.NoError(t, s.posts.DeletePost(ctx, author, post.ID))
	assert.False(t, s.store.Exists(photo.Filename))
	assert.False(t, s.store.Exists(webpSibling(photo.Filename)))

	var comments int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)

	_, err = s.posts.GetPost(ctx, author, post.ID)
	assertCode(t, err, models.CodeNotFound)
}
