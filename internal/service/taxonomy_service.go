package service

import (
	"context"
	"strings"

	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/repository"
	"folio/internal/validation"
)

type CategoryService struct {
	categories repository.CategoryRepository
	pageSize   int
}

type CategoryInput struct {
	ID   uint
	Name string
}

func NewCategoryService(categories repository.CategoryRepository, pageSize int) *CategoryService {
	return &CategoryService{categories: categories, pageSize: pageSize}
}

func (s *CategoryService) List(ctx context.Context, page int) (*pagination.Page[models.Category], error) {
	return s.categories.List(ctx, pagination.Request{Page: page, Size: s.pageSize})
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, actor *models.User, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category := &models.Category{Name: strings.TrimSpace(in.Name)}
	category.Code = models.MakeCode(category.Name, models.CategoryCodeSize)
	if err := validation.Struct(category); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *models.User, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(in.Name)
	category.Code = models.MakeCode(category.Name, models.CategoryCodeSize)
	if err := validation.Struct(category); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete is refused with a VALIDATION_ERROR while posts use the category.
func (s *CategoryService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

type TagService struct {
	tags     repository.TagRepository
	pageSize int
}

type TagInput struct {
	ID   uint
	Name string
}

func NewTagService(tags repository.TagRepository, pageSize int) *TagService {
	return &TagService{tags: tags, pageSize: pageSize}
}

func (s *TagService) List(ctx context.Context, page int) (*pagination.Page[models.Tag], error) {
	return s.tags.List(ctx, pagination.Request{Page: page, Size: s.pageSize})
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

func (s *TagService) Update(ctx context.Context, actor *models.User, in TagInput) (*models.Tag, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tag, err := s.tags.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	tag.Name = normalizeTagName(in.Name)
	tag.Code = models.MakeCode(tag.Name, models.TagCodeSize)
	if err := validation.Struct(tag); err != nil {
		return nil, err
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete unlinks the tag from its posts and removes it.
func (s *TagService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tags.Delete(ctx, id)
}

// Resolve turns a comma-separated list of names into tags. Known names come
// back as stored rows; new ones are validated but left unsaved (ID 0) for
// the post repository to insert with the post. Blank entries and repeats
// are skipped; order follows first appearance.
func (s *TagService) Resolve(ctx context.Context, raw string) ([]models.Tag, error) {
	var out []models.Tag
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := normalizeTagName(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag, err := s.tags.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			tag = &models.Tag{Name: name, Code: models.MakeCode(name, models.TagCodeSize)}
			if err := validation.Struct(tag); err != nil {
				return nil, err
			}
		}
		out = append(out, *tag)
	}
	return out, nil
}

func normalizeTagName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
