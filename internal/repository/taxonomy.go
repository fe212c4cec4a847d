package repository

import (
	"context"
	"errors"
	"strings"

	"folio/internal/models"
	"folio/internal/pagination"

	"gorm.io/gorm"
)

// CategoryRepository defines interface for category operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Category], error)
}

// TagRepository defines interface for tag operations
type TagRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Tag], error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return translateError(r.db.WithContext(ctx).Create(category).Error, "Category", category.ID)
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translateError(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).
		Updates(map[string]any{"name": category.Name, "code": category.Code})
	if res.Error != nil {
		return translateError(res.Error, "Category", category.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", category.ID)
	}
	return nil
}

// Delete refuses to remove a category that still has posts.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Count(&posts).Error; err != nil {
			return translateError(err, "Category", id)
		}
		if posts > 0 {
			return models.NewFieldValidationError(map[string]string{
				"category": "category still has posts",
			})
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return translateError(res.Error, "Category", id)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Category", id)
		}
		return nil
	})
}

func (r *categoryRepository) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Category], error) {
	out, err := pagination.Paginate[models.Category](r.db.WithContext(ctx).Model(&models.Category{}), page, byNameAsc("categories"))
	if err != nil {
		return nil, translateError(err, "Category", nil)
	}
	return out, nil
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, translateError(err, "Tag", id)
	}
	return &tag, nil
}

// FindByName returns nil, nil when no tag has that (lowercased) name.
func (r *tagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", strings.ToLower(name)).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "Tag", name)
	}
	return &tag, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	res := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", tag.ID).
		Updates(map[string]any{"name": tag.Name, "code": tag.Code})
	if res.Error != nil {
		return translateError(res.Error, "Tag", tag.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Tag", tag.ID)
	}
	return nil
}

// Delete unlinks the tag from every post before removing it.
func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return translateError(err, "Tag", id)
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return translateError(res.Error, "Tag", id)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Tag", id)
		}
		return nil
	})
}

func (r *tagRepository) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Tag], error) {
	out, err := pagination.Paginate[models.Tag](r.db.WithContext(ctx).Model(&models.Tag{}), page, byNameAsc("tags"))
	if err != nil {
		return nil, translateError(err, "Tag", nil)
	}
	return out, nil
}

func byNameAsc(table string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Order(table + ".name ASC").Order(table + ".id ASC")
	}
}
