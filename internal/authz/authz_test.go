package authz

import (
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool { return &v }

func account(id uint, admin, blocked bool) *models.User {
	u := &models.User{ID: id, Blocked: boolPtr(blocked)}
	if admin {
		u.Roles = []models.UserRole{{UserID: id, Role: models.RoleAdmin}}
	}
	return u
}

func TestManagePost(t *testing.T) {
	t.Parallel()

	author := account(1, false, false)
	stranger := account(2, false, false)
	admin := account(3, true, false)
	p := &models.Post{ID: 10, AuthorID: author.ID, Author: author, Published: boolPtr(true)}

	tests := []struct {
		name      string
		principal *models.User
		want      bool
	}{
		{"anonymous", nil, false},
		{"non-author", stranger, false},
		{"author", author, true},
		{"admin", admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthorized(tt.principal, Manage, PostSubject{Post: p}))
		})
	}
}

func TestViewPost(t *testing.T) {
	t.Parallel()

	author := account(1, false, false)
	banned := account(2, false, true)
	reader := account(3, false, false)
	admin := account(4, true, false)

	published := &models.Post{AuthorID: author.ID, Author: author, Published: boolPtr(true)}
	draft := &models.Post{AuthorID: author.ID, Author: author, Published: boolPtr(false)}
	unset := &models.Post{AuthorID: author.ID, Author: author}
	byBanned := &models.Post{AuthorID: banned.ID, Author: banned, Published: boolPtr(true)}

	tests := []struct {
		name      string
		principal *models.User
		post      *models.Post
		want      Decision
	}{
		{"anonymous sees published", nil, published, Allow},
		{"anonymous cannot see draft", nil, draft, Hide},
		{"unset published is a draft", reader, unset, Hide},
		{"author sees own draft", author, draft, Allow},
		{"admin sees draft", admin, draft, Allow},
		{"blocked author hidden from readers", reader, byBanned, Hide},
		{"blocked author hidden from self", banned, byBanned, Hide},
		{"admin sees blocked author", admin, byBanned, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.principal, View, PostSubject{Post: tt.post}))
		})
	}
}

func TestComments(t *testing.T) {
	t.Parallel()

	author := account(1, false, false)
	commenter := account(2, false, false)
	banned := account(3, false, true)
	admin := account(4, true, false)

	post := &models.Post{AuthorID: author.ID, Author: author, Published: boolPtr(true)}
	draft := &models.Post{AuthorID: author.ID, Author: author}
	mine := &models.Comment{AuthorID: commenter.ID, Author: commenter, Post: post}
	onDraft := &models.Comment{AuthorID: commenter.ID, Author: commenter, Post: draft}
	fromBanned := &models.Comment{AuthorID: banned.ID, Author: banned, Post: post}

	assert.Equal(t, Allow, Decide(commenter, Manage, CommentSubject{Comment: mine}))
	assert.Equal(t, Deny, Decide(author, Manage, CommentSubject{Comment: mine}), "post author does not own the comment")
	assert.Equal(t, Allow, Decide(admin, Manage, CommentSubject{Comment: mine}))
	assert.Equal(t, Deny, Decide(nil, Manage, CommentSubject{Comment: mine}))

	assert.Equal(t, Allow, Decide(nil, View, CommentSubject{Comment: mine}))
	assert.Equal(t, Hide, Decide(commenter, View, CommentSubject{Comment: onDraft}))
	assert.Equal(t, Allow, Decide(author, View, CommentSubject{Comment: onDraft}))
	assert.Equal(t, Hide, Decide(commenter, View, CommentSubject{Comment: fromBanned}))
	assert.Equal(t, Allow, Decide(admin, View, CommentSubject{Comment: fromBanned}))
}

func TestPhotos(t *testing.T) {
	t.Parallel()

	author := account(1, false, false)
	reader := account(2, false, false)
	admin := account(3, true, false)
	photo := &models.Photo{Post: &models.Post{AuthorID: author.ID, Author: author}}

	assert.True(t, IsAuthorized(author, Manage, PhotoSubject{Photo: photo}))
	assert.True(t, IsAuthorized(admin, Manage, PhotoSubject{Photo: photo}))
	assert.False(t, IsAuthorized(reader, Manage, PhotoSubject{Photo: photo}))
	assert.Equal(t, Hide, Decide(reader, View, PhotoSubject{Photo: photo}), "photo of an unpublished post")
	assert.False(t, IsAuthorized(admin, View, PhotoSubject{Photo: &models.Photo{}}), "photo without post")
}

func TestUsers(t *testing.T) {
	t.Parallel()

	self := account(1, false, false)
	other := account(2, false, false)
	banned := account(3, false, true)
	admin := account(4, true, false)

	assert.True(t, IsAuthorized(self, Manage, UserSubject{User: self}))
	assert.False(t, IsAuthorized(other, Manage, UserSubject{User: self}))
	assert.True(t, IsAuthorized(admin, Manage, UserSubject{User: self}))

	assert.Equal(t, Allow, Decide(nil, View, UserSubject{User: self}))
	assert.Equal(t, Hide, Decide(other, View, UserSubject{User: banned}))
	assert.Equal(t, Allow, Decide(admin, View, UserSubject{User: banned}))

	data := &models.UserData{UserID: self.ID}
	assert.Equal(t, Allow, Decide(self, Manage, UserDataSubject{Data: data}))
	assert.Equal(t, Deny, Decide(other, Manage, UserDataSubject{Data: data}))
	assert.Equal(t, Allow, Decide(admin, Manage, UserDataSubject{Data: data}))
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Deny, RequireRole(nil, models.RoleUser))
	assert.Equal(t, Allow, RequireRole(account(1, false, false), models.RoleUser))
	assert.Equal(t, Deny, RequireRole(account(1, false, false), models.RoleAdmin))
	assert.Equal(t, Allow, RequireRole(account(2, true, false), models.RoleAdmin))
}

func TestStringers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "view", View.String())
	assert.Equal(t, "manage", Manage.String())
	assert.Equal(t, "hide", Hide.String())
	assert.Equal(t, "post", PostSubject{}.Kind())
	assert.Equal(t, "user_data", UserDataSubject{}.Kind())
}
