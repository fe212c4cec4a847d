package repository

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostMode selects the visibility policy of a post listing.
type PostMode string

const (
	// ModeMain lists published posts of non-blocked authors.
	ModeMain PostMode = "main"
	// ModeMainAdmin lists every post of non-blocked authors.
	ModeMainAdmin PostMode = "main_admin"
	// ModeProfile lists published posts of one non-blocked author.
	ModeProfile PostMode = "profile"
	// ModeProfileAuthor lists every post of one author.
	ModeProfileAuthor PostMode = "profile_author"
)

// PostQuery describes one page of a post listing.
type PostQuery struct {
	Mode PostMode
	// AuthorID is the profile owner for the profile modes.
	AuthorID uint
	Filters  models.FilterSet
	Page     pagination.Request
}

// PostRepository defines interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q PostQuery) (*pagination.Page[models.Post], error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func preloadPost(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Category").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}

// Create inserts the post, any of its tags that are not stored yet and the
// tag links in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createMissingTags(tx, post.Tags); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return translateError(err, "Post", post.ID)
		}
		return replacePostTags(tx, post.ID, post.Tags)
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(preloadPost).First(&post, id).Error; err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

// Update saves the post fields and its tag set if the stored version still
// matches post.Version, then bumps post.Version.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		values := map[string]any{
			"title":       post.Title,
			"content":     post.Content,
			"published":   post.Published,
			"code":        post.Code,
			"category_id": post.CategoryID,
		}
		if err := updateVersioned(tx, &models.Post{}, "Post", post.ID, post.Version, values); err != nil {
			return err
		}
		if err := createMissingTags(tx, post.Tags); err != nil {
			return err
		}
		return replacePostTags(tx, post.ID, post.Tags)
	})
	if err != nil {
		return err
	}
	post.Version++
	return nil
}

// Delete removes the post together with its comments, photos and tag links.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translateError(err, "Comment", id)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return translateError(err, "Photo", id)
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return translateError(err, "Post", id)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return translateError(res.Error, "Post", id)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

// List returns one page of posts visible under q.Mode, newest first.
func (r *postRepository) List(ctx context.Context, q PostQuery) (*pagination.Page[models.Post], error) {
	base, err := composePostQuery(r.db.WithContext(ctx), q.Mode, q.AuthorID, q.Filters)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Post](base, q.Page, orderByRecent("posts"), preloadPost)
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return page, nil
}

// createMissingTags inserts the tags that have no ID yet, filling in their IDs.
func createMissingTags(tx *gorm.DB, tags []models.Tag) error {
	for i := range tags {
		if tags[i].ID != 0 {
			continue
		}
		if err := tx.Create(&tags[i]).Error; err != nil {
			return translateError(err, "Tag", tags[i].Name)
		}
	}
	return nil
}

// replacePostTags rewrites the post_tags links of a post. Tags must already be persisted.
func replacePostTags(tx *gorm.DB, postID uint, tags []models.Tag) error {
	if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", postID).Error; err != nil {
		return translateError(err, "Post", postID)
	}
	for _, tag := range tags {
		if err := tx.Exec("INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)", postID, tag.ID).Error; err != nil {
			return translateError(err, "Tag", tag.ID)
		}
	}
	return nil
}

func (r *postRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translateError(err, "Post", nil)
}

// composePostQuery builds the filtered, unordered post set for mode. All
// filter predicates are conjunctions on top of the mode's base predicate.
func composePostQuery(db *gorm.DB, mode PostMode, authorID uint, f models.FilterSet) (*gorm.DB, error) {
	q := db.Model(&models.Post{})

	switch mode {
	case ModeMain:
		q = excludeBlockedAuthors(q.Where("posts.published = ?", true), "posts.author_id")
	case ModeMainAdmin:
		q = excludeBlockedAuthors(q, "posts.author_id")
	case ModeProfile, ModeProfileAuthor:
		if authorID == 0 {
			return nil, fmt.Errorf("post list mode %q requires an author", mode)
		}
		q = q.Where("posts.author_id = ?", authorID)
		if mode == ModeProfile {
			q = excludeBlockedAuthors(q.Where("posts.published = ?", true), "posts.author_id")
		}
	default:
		return nil, fmt.Errorf("unknown post list mode %q", mode)
	}

	if f.Category != nil {
		q = q.Where("posts.category_id = ?", f.Category.ID)
	}
	if f.Tag != nil {
		q = q.Where("posts.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", f.Tag.ID)
	}
	if f.Search != "" {
		q = q.Where(`LOWER(posts.title) LIKE ? ESCAPE '\'`, likePattern(f.Search))
	}
	return q, nil
}
