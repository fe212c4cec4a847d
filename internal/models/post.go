package models

import (
	"time"
)

// Category groups posts. Deleting a category that still has posts is refused.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name" validate:"required,min=3,max=64"`
	Code      string    `gorm:"size:64;index" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels posts. Names are stored lowercase.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:32;uniqueIndex;not null" json:"name" validate:"required,min=3,max=32"`
	Code      string    `gorm:"size:32;index" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is a blog entry. A nil Published is treated as unpublished.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:64;not null" json:"title" validate:"required,min=3,max=64"`
	Content    string    `gorm:"type:text;not null" json:"content" validate:"required,min=3,max=1000"`
	Published  *bool     `json:"published"`
	Code       string    `gorm:"size:64;index" json:"code"`
	CategoryID uint      `gorm:"not null;index" json:"category_id" validate:"required"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags       []Tag     `gorm:"many2many:post_tags" json:"tags"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Version    uint      `gorm:"not null" json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
}

// IsPublished treats an unset flag as unpublished.
func (p *Post) IsPublished() bool {
	return p != nil && p.Published != nil && *p.Published
}

// Comment is a reader's reply to a post. Every comment has an author.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:64;not null" json:"title" validate:"required,min=3,max=64"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required,min=3,max=1000"`
	PostID    uint      `gorm:"not null;index" json:"post_id" validate:"required"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Version   uint      `gorm:"not null" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// Photo is an image attached to a post. Photos carry no timestamps and are
// ordered by id.
type Photo struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Filename string `gorm:"size:128;uniqueIndex;not null" json:"filename" validate:"required,max=128"`
	PostID   uint   `gorm:"not null;index" json:"post_id" validate:"required"`
	Post     *Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
	// URL and WebPURL are not persisted; they are derived from Filename.
	URL     string `gorm:"-" json:"url,omitempty"`
	WebPURL string `gorm:"-" json:"webp_url,omitempty"`
}

// FilterSet narrows a post listing. The zero value means no restriction.
type FilterSet struct {
	Category *Category `json:"category,omitempty"`
	Tag      *Tag      `json:"tag,omitempty"`
	Search   string    `json:"search,omitempty"`
}

// IsEmpty reports whether no filter is active.
func (f FilterSet) IsEmpty() bool {
	return f.Category == nil && f.Tag == nil && f.Search == ""
}
