package repository

import (
	"context"
	"errors"

	"folio/internal/models"
	"folio/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentQuery selects a comment listing: by post, by author, or neither
// for the administrative view. Setting both is rejected.
type CommentQuery struct {
	PostID   uint
	AuthorID uint
	Page     pagination.Request
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q CommentQuery) (*pagination.Page[models.Comment], error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func preloadComment(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Post").Preload("Post.Author")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error, "Comment", comment.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Scopes(preloadComment).First(&comment, id).Error; err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &comment, nil
}

// Update saves title and content if the stored version still matches.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	values := map[string]any{
		"title":   comment.Title,
		"content": comment.Content,
	}
	if err := updateVersioned(r.db.WithContext(ctx), &models.Comment{}, "Comment", comment.ID, comment.Version, values); err != nil {
		return err
	}
	comment.Version++
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// List returns one page of comments, newest first.
func (r *commentRepository) List(ctx context.Context, q CommentQuery) (*pagination.Page[models.Comment], error) {
	base, err := composeCommentQuery(r.db.WithContext(ctx), q.PostID, q.AuthorID)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Comment](base, q.Page, orderByRecent("comments"), preloadComment)
	if err != nil {
		return nil, translateError(err, "Comment", nil)
	}
	return page, nil
}

// composeCommentQuery hides blocked authors only in the per-post listing.
// An author's own listing and the administrative listing show everything.
func composeCommentQuery(db *gorm.DB, postID, authorID uint) (*gorm.DB, error) {
	q := db.Model(&models.Comment{})
	switch {
	case postID != 0 && authorID != 0:
		return nil, errors.New("comment listing accepts a post or an author, not both")
	case postID != 0:
		q = excludeBlockedAuthors(q.Where("comments.post_id = ?", postID), "comments.author_id")
	case authorID != 0:
		q = q.Where("comments.author_id = ?", authorID)
	}
	return q, nil
}
