package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postListing struct {
	Posts   pagination.Page[models.Post] `json:"posts"`
	Filters models.FilterSet             `json:"filters"`
	Mode    string                       `json:"mode"`
}

func postTitles(page pagination.Page[models.Post]) []string {
	out := make([]string, len(page.Items))
	for i, p := range page.Items {
		out[i] = p.Title
	}
	return out
}

func TestGetPosts_Modes(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	admin := testutil.CreateUser(t, env.db, testutil.UserOpts{Admin: true})
	blocked := testutil.CreateUser(t, env.db, testutil.UserOpts{Blocked: true})
	category := testutil.CreateCategory(t, env.db)

	testutil.CreatePost(t, env.db, author, category, testutil.PostOpts{Title: "published", Published: testutil.BoolPtr(true), Age: 3 * time.Hour})
	testutil.CreatePost(t, env.db, author, category, testutil.PostOpts{Title: "draft", Published: testutil.BoolPtr(false), Age: 2 * time.Hour})
	testutil.CreatePost(t, env.db, author, category, testutil.PostOpts{Title: "unset", Age: time.Hour})
	testutil.CreatePost(t, env.db, blocked, category, testutil.PostOpts{Title: "from blocked", Published: testutil.BoolPtr(true)})

	resp := env.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decode[postListing](t, resp)
	assert.Equal(t, "main", listing.Mode)
	assert.Equal(t, []string{"published"}, postTitles(listing.Posts))

	resp = env.do(t, http.MethodGet, "/api/posts", env.tokenFor(t, admin), nil)
	listing = decode[postListing](t, resp)
	assert.Equal(t, "main_admin", listing.Mode)
	assert.Equal(t, []string{"unset", "draft", "published"}, postTitles(listing.Posts))
	assert.Equal(t, int64(3), listing.Posts.TotalCount)
	assert.Equal(t, 1, listing.Posts.TotalPages)
}

func TestGetPosts_FiltersAndPaging(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	travel := testutil.CreateCategory(t, env.db)
	food := testutil.CreateCategory(t, env.db)
	golang := testutil.CreateTag(t, env.db, "golang")

	for i := 0; i < 4; i++ {
		testutil.CreatePost(t, env.db, author, travel, testutil.PostOpts{
			Title:     fmt.Sprintf("Trip %d", i),
			Published: testutil.BoolPtr(true),
			Age:       time.Duration(10-i) * time.Hour,
		})
	}
	testutil.CreatePost(t, env.db, author, food, testutil.PostOpts{
		Title:     "Gopher Soup",
		Published: testutil.BoolPtr(true),
		Tags:      []models.Tag{*golang},
	})

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/posts?filters_category_id=%d&page=2", travel.ID), "", nil)
	listing := decode[postListing](t, resp)
	require.NotNil(t, listing.Filters.Category)
	assert.Equal(t, travel.ID, listing.Filters.Category.ID)
	assert.Equal(t, 2, listing.Posts.TotalPages)
	assert.Equal(t, []string{"Trip 0"}, postTitles(listing.Posts))

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/posts?filters_tag_id=%d", golang.ID), "", nil)
	listing = decode[postListing](t, resp)
	assert.Equal(t, []string{"Gopher Soup"}, postTitles(listing.Posts))

	resp = env.do(t, http.MethodGet, "/api/posts?search=SOUP", "", nil)
	listing = decode[postListing](t, resp)
	assert.Equal(t, "SOUP", listing.Filters.Search)
	assert.Equal(t, []string{"Gopher Soup"}, postTitles(listing.Posts))

	// Unknown and malformed filters are dropped, not rejected.
	resp = env.do(t, http.MethodGet, "/api/posts?filters_category_id=9999&filters_tag_id=abc&page=-4", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing = decode[postListing](t, resp)
	assert.True(t, listing.Filters.IsEmpty())
	assert.Equal(t, 1, listing.Posts.PageNumber)
	assert.Equal(t, int64(5), listing.Posts.TotalCount)

	resp = env.do(t, http.MethodGet, "/api/posts?page=99", "", nil)
	listing = decode[postListing](t, resp)
	assert.Empty(t, listing.Posts.Items)

	resp = env.do(t, http.MethodGet, "/api/posts?page=4611686018427387904", "", nil)
	listing = decode[postListing](t, resp)
	assert.Empty(t, listing.Posts.Items)
	assert.Equal(t, 4611686018427387904, listing.Posts.PageNumber)
}

func TestGetPost_Visibility(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	stranger := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	category := testutil.CreateCategory(t, env.db)
	draft := testutil.CreatePost(t, env.db, author, category, testutil.PostOpts{})

	path := fmt.Sprintf("/api/posts/%d", draft.ID)
	assertHiddenRedirect(t, env.do(t, http.MethodGet, path, "", nil))
	assertHiddenRedirect(t, env.do(t, http.MethodGet, path, env.tokenFor(t, stranger), nil))

	resp := env.do(t, http.MethodGet, path, env.tokenFor(t, author), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/posts/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid ID", decode[models.ErrorResponse](t, resp).Error)
}

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	stranger := testutil.CreateUser(t, env.db, testutil.UserOpts{})
	admin := testutil.CreateUser(t, env.db, testutil.UserOpts{Admin: true})
	category := testutil.CreateCategory(t, env.db)
	authorToken := env.tokenFor(t, author)

	resp := env.do(t, http.MethodPost, "/api/posts", "", postRequest{Title: "Anonymous", Content: "nope", CategoryID: category.ID})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/posts", authorToken, postRequest{
		Title:      "First post",
		Content:    "Hello there.",
		Published:  testutil.BoolPtr(true),
		CategoryID: category.ID,
		Tags:       "Intro, Meta",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Post](t, resp)
	require.Len(t, created.Tags, 2)
	assert.Equal(t, "first-post", created.Code)
	path := fmt.Sprintf("/api/posts/%d", created.ID)

	version := created.Version
	update := postRequest{Title: "First post, edited", Content: "Hello again.", Published: testutil.BoolPtr(true), CategoryID: category.ID, Version: &version}

	resp = env.do(t, http.MethodPut, path, env.tokenFor(t, stranger), update)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPut, path, authorToken, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Post](t, resp)
	assert.Equal(t, version+1, updated.Version)
	assert.Empty(t, updated.Tags)

	// Same version again: someone else saved in between.
	resp = env.do(t, http.MethodPut, path, env.tokenFor(t, admin), update)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPut, path, authorToken, postRequest{Title: "x", Content: "Hello again.", CategoryID: category.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, path, env.tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, path, env.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, authorToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
