// Package authz decides who may view or manage blog content. It is pure:
// callers load the subject with the relations the rules need (a post's
// author, a comment's post and author, a photo's post and author).
package authz

import "folio/internal/models"

// Action is what a principal wants to do with a subject.
type Action int

const (
	// View reads a subject.
	View Action = iota
	// Manage edits or deletes a subject.
	Manage
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Manage:
		return "manage"
	}
	return "unknown"
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// Hide pretends the subject is not there; the caller redirects to the default listing.
	Hide
	// Deny is an explicit refusal.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Hide:
		return "hide"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Subject is one of PostSubject, CommentSubject, PhotoSubject,
// UserDataSubject or UserSubject.
type Subject interface {
	Kind() string
	subject()
}

// PostSubject wraps a post with its Author loaded.
type PostSubject struct{ Post *models.Post }

// CommentSubject wraps a comment with Author, Post and Post.Author loaded.
type CommentSubject struct{ Comment *models.Comment }

// PhotoSubject wraps a photo with Post and Post.Author loaded.
type PhotoSubject struct{ Photo *models.Photo }

// UserDataSubject wraps a public profile.
type UserDataSubject struct{ Data *models.UserData }

// UserSubject wraps an account.
type UserSubject struct{ User *models.User }

func (PostSubject) Kind() string     { return "post" }
func (CommentSubject) Kind() string  { return "comment" }
func (PhotoSubject) Kind() string    { return "photo" }
func (UserDataSubject) Kind() string { return "user_data" }
func (UserSubject) Kind() string     { return "user" }

func (PostSubject) subject()     {}
func (CommentSubject) subject()  {}
func (PhotoSubject) subject()    {}
func (UserDataSubject) subject() {}
func (UserSubject) subject()     {}

// IsAuthorized reports whether principal may perform action on subject. A
// nil principal is an anonymous visitor.
func IsAuthorized(principal *models.User, action Action, subject Subject) bool {
	switch s := subject.(type) {
	case PostSubject:
		return post(principal, action, s.Post)
	case CommentSubject:
		return comment(principal, action, s.Comment)
	case PhotoSubject:
		return photo(principal, action, s.Photo)
	case UserDataSubject:
		return userData(principal, action, s.Data)
	case UserSubject:
		return user(principal, action, s.User)
	}
	return false
}

// Decide turns IsAuthorized into a response policy. Failed views are
// hidden; failed manage checks are denied.
func Decide(principal *models.User, action Action, subject Subject) Decision {
	if IsAuthorized(principal, action, subject) {
		return Allow
	}
	if action == View {
		return Hide
	}
	return Deny
}

// RequireRole gates admin-only surfaces. Anonymous principals hold no role.
func RequireRole(principal *models.User, role string) Decision {
	if principal != nil && principal.HasRole(role) {
		return Allow
	}
	return Deny
}

func isAdmin(p *models.User) bool {
	return p != nil && p.IsAdmin()
}

func isUser(p *models.User, id uint) bool {
	return p != nil && p.ID != 0 && p.ID == id
}

func post(p *models.User, action Action, post *models.Post) bool {
	if post == nil {
		return false
	}
	canManage := isAdmin(p) || isUser(p, post.AuthorID)
	switch action {
	case Manage:
		return canManage
	case View:
		if !post.IsPublished() && !canManage {
			return false
		}
		if post.Author.IsBlocked() && !isAdmin(p) {
			return false
		}
		return true
	}
	return false
}

func comment(p *models.User, action Action, c *models.Comment) bool {
	if c == nil {
		return false
	}
	switch action {
	case Manage:
		return isAdmin(p) || isUser(p, c.AuthorID)
	case View:
		if !post(p, View, c.Post) {
			return false
		}
		return !c.Author.IsBlocked() || isAdmin(p)
	}
	return false
}

func photo(p *models.User, action Action, ph *models.Photo) bool {
	if ph == nil || ph.Post == nil {
		return false
	}
	switch action {
	case Manage:
		return isAdmin(p) || isUser(p, ph.Post.AuthorID)
	case View:
		return post(p, View, ph.Post)
	}
	return false
}

func userData(p *models.User, action Action, d *models.UserData) bool {
	if d == nil {
		return false
	}
	switch action {
	case Manage:
		return isAdmin(p) || isUser(p, d.UserID)
	case View:
		return true
	}
	return false
}

func user(p *models.User, action Action, u *models.User) bool {
	if u == nil {
		return false
	}
	switch action {
	case Manage:
		return isAdmin(p) || isUser(p, u.ID)
	case View:
		return !u.IsBlocked() || isAdmin(p)
	}
	return false
}
