package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"folio/internal/models"
	"folio/internal/repository"
)

// MaxSearchLength bounds the search term to the post title limit.
const MaxSearchLength = 64

// RawFilters are listing filters exactly as they arrive from the query string.
type RawFilters struct {
	CategoryID string
	TagID      string
	Search     string
}

// FilterBuilder resolves raw filters into a FilterSet.
type FilterBuilder struct {
	categories repository.CategoryRepository
	tags       repository.TagRepository
}

func NewFilterBuilder(categories repository.CategoryRepository, tags repository.TagRepository) *FilterBuilder {
	return &FilterBuilder{categories: categories, tags: tags}
}

// BuildFilters keeps a category or tag only when its id parses as a
// positive integer and resolves to a stored row. Anything malformed or
// unknown is dropped silently; only storage failures are returned.
func (b *FilterBuilder) BuildFilters(ctx context.Context, raw RawFilters) (models.FilterSet, error) {
	var out models.FilterSet

	if id, ok := parsePositiveID(raw.CategoryID); ok {
		category, err := b.categories.GetByID(ctx, id)
		switch {
		case err == nil:
			out.Category = category
		case !models.HasCode(err, models.CodeNotFound):
			return models.FilterSet{}, err
		}
	}

	if id, ok := parsePositiveID(raw.TagID); ok {
		tag, err := b.tags.GetByID(ctx, id)
		switch {
		case err == nil:
			out.Tag = tag
		case !models.HasCode(err, models.CodeNotFound):
			return models.FilterSet{}, err
		}
	}

	if strings.TrimSpace(raw.Search) != "" && utf8.RuneCountInString(raw.Search) <= MaxSearchLength {
		out.Search = raw.Search
	}

	return out, nil
}

func parsePositiveID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
