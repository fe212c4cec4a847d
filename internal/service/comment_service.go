package service

import (
	"context"
	"strings"

	"folio/internal/authz"
	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/repository"
	"folio/internal/validation"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	pageSize int
}

type CreateCommentInput struct {
	PostID  uint
	Title   string
	Content string
}

type UpdateCommentInput struct {
	CommentID uint
	Version   *uint
	Title     string
	Content   string
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, pageSize int) *CommentService {
	return &CommentService{comments: comments, posts: posts, pageSize: pageSize}
}

// ListPostComments pages the visible comments of a post. Comments by
// blocked authors are left out.
func (s *CommentService) ListPostComments(ctx context.Context, actor *models.User, postID uint, page int) (*pagination.Page[models.Comment], error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.PostSubject{Post: post}, "Post", postID); err != nil {
		return nil, err
	}
	return s.comments.List(ctx, repository.CommentQuery{
		PostID: postID,
		Page:   pagination.Request{Page: page, Size: s.pageSize},
	})
}

// ListComments is the comment index: every comment for administrators,
// the caller's own comments otherwise.
func (s *CommentService) ListComments(ctx context.Context, actor *models.User, page int) (*pagination.Page[models.Comment], error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	q := repository.CommentQuery{Page: pagination.Request{Page: page, Size: s.pageSize}}
	if !actor.IsAdmin() {
		q.AuthorID = actor.ID
	}
	return s.comments.List(ctx, q)
}

func (s *CommentService) GetComment(ctx context.Context, actor *models.User, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.CommentSubject{Comment: comment}, "Comment", id); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateComment adds a comment by actor to a post actor can see.
func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, in CreateCommentInput) (*models.Comment, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.PostSubject{Post: post}, "Post", in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		PostID:   post.ID,
		AuthorID: actor.ID,
	}
	if err := validation.Struct(comment); err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, actor *models.User, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.Manage, authz.CommentSubject{Comment: comment}, "Comment", in.CommentID); err != nil {
		return nil, err
	}

	comment.Title = strings.TrimSpace(in.Title)
	comment.Content = strings.TrimSpace(in.Content)
	if in.Version != nil {
		comment.Version = *in.Version
	}
	if err := validation.Struct(&models.Comment{
		Title:    comment.Title,
		Content:  comment.Content,
		PostID:   comment.PostID,
		AuthorID: comment.AuthorID,
	}); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, id uint) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.Manage, authz.CommentSubject{Comment: comment}, "Comment", id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}
