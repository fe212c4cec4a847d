// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/database"
	"folio/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(database.OpenSQLite(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every new connection would see a fresh, empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

// UserOpts tweaks a fixture user.
type UserOpts struct {
	Admin   bool
	Blocked bool
}

// CreateUser persists a user with a unique email.
func CreateUser(t *testing.T, db *gorm.DB, opts UserOpts) *models.User {
	t.Helper()
	n := seq.Add(1)
	user := &models.User{
		Email:    fmt.Sprintf("user%d@folio.test", n),
		Password: "not-a-hash",
	}
	if opts.Blocked {
		user.Blocked = BoolPtr(true)
	}
	require.NoError(t, db.Create(user).Error)
	if opts.Admin {
		role := models.UserRole{UserID: user.ID, Role: models.RoleAdmin}
		require.NoError(t, db.Create(&role).Error)
		user.Roles = []models.UserRole{role}
	}
	return user
}

// CreateCategory persists a category with a unique name.
func CreateCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	n := seq.Add(1)
	category := &models.Category{Name: fmt.Sprintf("category-%d", n), Code: fmt.Sprintf("category-%d", n)}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateTag persists a tag with the given name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Code: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// PostOpts tweaks a fixture post.
type PostOpts struct {
	Title     string
	Published *bool
	Tags      []models.Tag
	// Age shifts updated_at into the past so ordering is deterministic.
	Age time.Duration
}

// CreatePost persists a post by author in category.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, opts PostOpts) *models.Post {
	t.Helper()
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("post %d", seq.Add(1))
	}
	post := &models.Post{
		Title:      title,
		Content:    "some content",
		Code:       title,
		Published:  opts.Published,
		CategoryID: category.ID,
		AuthorID:   author.ID,
		Tags:       opts.Tags,
	}
	require.NoError(t, db.Create(post).Error)
	if opts.Age > 0 {
		stamp := time.Now().Add(-opts.Age)
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("updated_at", stamp).Error)
		post.UpdatedAt = stamp
	}
	return post
}

// CreateComment persists a comment on post by author.
func CreateComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Title:    "a comment",
		Content:  "comment body",
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}
