// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import (
	"fmt"
	"math"

	"gorm.io/gorm"
)

// DefaultPageSize is used when a listing is configured without a size.
const DefaultPageSize = 3

// Request identifies one page of a listing.
type Request struct {
	Page int
	Size int
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageNumber int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps the page number to 1 and falls back to DefaultPageSize.
func (r Request) Normalize() Request {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	return r
}

// Offset returns the number of rows skipped before this page. Pages too far
// out to address saturate at math.MaxInt, which is past any result set.
func (r Request) Offset() int {
	n := r.Normalize()
	if n.Page-1 > math.MaxInt/n.Size {
		return math.MaxInt
	}
	return (n.Page - 1) * n.Size
}

// TotalPages returns ceil(total/size).
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Paginate counts q, then loads the requested page with scopes applied.
// Scopes carry ordering and preloads so the count query stays plain.
func Paginate[T any](q *gorm.DB, req Request, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	req = req.Normalize()
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count page: %w", err)
	}

	items := make([]T, 0, req.Size)
	if int64(req.Offset()) < total {
		if err := base.Scopes(scopes...).Offset(req.Offset()).Limit(req.Size).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("load page: %w", err)
		}
	}

	return &Page[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: req.Page,
		PageSize:   req.Size,
		TotalPages: TotalPages(total, req.Size),
	}, nil
}
