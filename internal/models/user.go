// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Role names stored in the user_roles table. RoleUser is implicit and never persisted.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents an account of the blog.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:180;uniqueIndex;not null" json:"email" validate:"required,email,max=180"`
	Password  string     `gorm:"not null" json:"-"`
	Blocked   *bool      `json:"blocked,omitempty"`
	Roles     []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	UserData  *UserData  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user_data,omitempty"`
	Version   uint       `gorm:"not null" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserRole links a user to an elevated role.
type UserRole struct {
	UserID uint   `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role   string `gorm:"primaryKey;size:32" json:"role"`
}

// TableName pins the join table name.
func (UserRole) TableName() string {
	return "user_roles"
}

// IsBlocked treats an unset flag as not blocked.
func (u *User) IsBlocked() bool {
	return u != nil && u.Blocked != nil && *u.Blocked
}

// HasRole reports whether the user holds role. Every user holds RoleUser.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	if role == RoleUser {
		return true
	}
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleNames returns the sorted role set including the implicit RoleUser.
func (u *User) RoleNames() []string {
	seen := map[string]struct{}{RoleUser: {}}
	out := []string{RoleUser}
	for _, r := range u.Roles {
		if _, ok := seen[r.Role]; ok {
			continue
		}
		seen[r.Role] = struct{}{}
		out = append(out, r.Role)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON exposes the role set as plain names.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Roles   []string `json:"roles"`
		Blocked bool     `json:"blocked"`
	}{
		alias:   alias(u),
		Roles:   u.RoleNames(),
		Blocked: u.IsBlocked(),
	})
}

// UserData holds the public profile of a user.
type UserData struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name        string    `gorm:"size:64" json:"name" validate:"omitempty,min=3,max=64"`
	Description string    `gorm:"size:500" json:"description" validate:"omitempty,min=3,max=500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the singular table name used by the schema.
func (UserData) TableName() string {
	return "user_data"
}
