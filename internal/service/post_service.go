package service

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/authz"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/pagination"
	"folio/internal/repository"
	"folio/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       *TagService
	photos     *PhotoService
	pageSize   int
}

type CreatePostInput struct {
	Title      string
	Content    string
	Published  *bool
	CategoryID uint
	// Tags is a comma-separated list of tag names.
	Tags string
}

type UpdatePostInput struct {
	PostID uint
	// Version is the version the client last read; nil skips the check.
	Version    *uint
	Title      string
	Content    string
	Published  *bool
	CategoryID uint
	Tags       string
}

type ListPostsInput struct {
	Filters models.FilterSet
	Page    int
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	tags *TagService,
	photos *PhotoService,
	pageSize int,
) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		tags:       tags,
		photos:     photos,
		pageSize:   pageSize,
	}
}

// ListPosts is the front page: administrators also see unpublished posts.
func (s *PostService) ListPosts(ctx context.Context, actor *models.User, in ListPostsInput) (*pagination.Page[models.Post], error) {
	return s.posts.List(ctx, repository.PostQuery{
		Mode:    MainMode(actor),
		Filters: in.Filters,
		Page:    pagination.Request{Page: in.Page, Size: s.pageSize},
	})
}

// ListProfilePosts lists the posts of owner as seen by actor. Callers check
// View on owner first.
func (s *PostService) ListProfilePosts(ctx context.Context, actor, owner *models.User, in ListPostsInput) (*pagination.Page[models.Post], error) {
	return s.posts.List(ctx, repository.PostQuery{
		Mode:     ProfileMode(actor, owner),
		AuthorID: owner.ID,
		Filters:  in.Filters,
		Page:     pagination.Request{Page: in.Page, Size: s.pageSize},
	})
}

// MainMode picks the front-page listing mode for actor.
func MainMode(actor *models.User) repository.PostMode {
	if actor.IsAdmin() {
		return repository.ModeMainAdmin
	}
	return repository.ModeMain
}

// ProfileMode shows every post to whoever may manage the profile owner.
func ProfileMode(actor, owner *models.User) repository.PostMode {
	if authz.IsAuthorized(actor, authz.Manage, authz.UserSubject{User: owner}) {
		return repository.ModeProfileAuthor
	}
	return repository.ModeProfile
}

func (s *PostService) GetPost(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.PostSubject{Post: post}, "Post", id); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, actor *models.User, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "post.create")
	post, err := s.createPost(ctx, actor, in)
	observability.EndSpan(span, err)
	return post, err
}

func (s *PostService) createPost(ctx context.Context, actor *models.User, in CreatePostInput) (*models.Post, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		Content:    strings.TrimSpace(in.Content),
		Published:  in.Published,
		CategoryID: in.CategoryID,
		AuthorID:   actor.ID,
	}
	post.Code = models.MakeCode(post.Title, models.PostCodeSize)
	if err := validation.Struct(post); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	tags, err := s.tags.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	return s.posts.GetByID(ctx, post.ID)
}

// UpdatePost replaces the editable fields and the tag set. A stale
// in.Version yields CONFLICT.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, in UpdatePostInput) (*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "post.update", attribute.Int64("post.id", int64(in.PostID)))
	post, err := s.updatePost(ctx, actor, in)
	observability.EndSpan(span, err)
	return post, err
}

func (s *PostService) updatePost(ctx context.Context, actor *models.User, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.Manage, authz.PostSubject{Post: post}, "Post", in.PostID); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	post.Published = in.Published
	post.Code = models.MakeCode(post.Title, models.PostCodeSize)
	if in.Version != nil {
		post.Version = *in.Version
	}
	if in.CategoryID != 0 && in.CategoryID != post.CategoryID {
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = in.CategoryID
		post.Category = nil
	}

	checked := *post
	checked.Author, checked.Category = nil, nil
	if err := validation.Struct(&checked); err != nil {
		return nil, err
	}

	tags, err := s.tags.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// DeletePost removes the post with its comments, photos and stored files.
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.Manage, authz.PostSubject{Post: post}, "Post", id); err != nil {
		return err
	}

	var files []string
	if s.photos != nil {
		if files, err = s.photos.filenamesFor(ctx, id); err != nil {
			return err
		}
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	if s.photos != nil {
		s.photos.removeFiles(ctx, files)
	}
	return nil
}

func (s *PostService) requireCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewFieldValidationError(map[string]string{"category_id": "unknown category"})
		}
		return err
	}
	return nil
}
