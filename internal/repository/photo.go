package repository

import (
	"context"

	"folio/internal/models"
	"folio/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhotoRepository defines interface for photo operations
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uint) (*models.Photo, error)
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint, page pagination.Request) (*pagination.Page[models.Photo], error)
	FilenamesByPost(ctx context.Context, postID uint) ([]string, error)
}

type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *models.Photo) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(photo).Error, "Photo", photo.ID)
}

func (r *photoRepository) GetByID(ctx context.Context, id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Preload("Post").Preload("Post.Author").First(&photo, id).Error; err != nil {
		return nil, translateError(err, "Photo", id)
	}
	return &photo, nil
}

func (r *photoRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Photo{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Photo", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Photo", id)
	}
	return nil
}

// ListByPost pages a post's photos by descending id. Photos have no timestamps.
func (r *photoRepository) ListByPost(ctx context.Context, postID uint, page pagination.Request) (*pagination.Page[models.Photo], error) {
	base := r.db.WithContext(ctx).Model(&models.Photo{}).Where("photos.post_id = ?", postID)
	out, err := pagination.Paginate[models.Photo](base, page, func(q *gorm.DB) *gorm.DB {
		return q.Order("photos.id DESC")
	})
	if err != nil {
		return nil, translateError(err, "Photo", nil)
	}
	return out, nil
}

func (r *photoRepository) FilenamesByPost(ctx context.Context, postID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Photo{}).Where("post_id = ?", postID).Pluck("filename", &names).Error
	return names, translateError(err, "Photo", nil)
}
