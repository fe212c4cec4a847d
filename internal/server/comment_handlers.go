package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Version *uint  `json:"version"`
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.commentService.ListPostComments(c.UserContext(), actorFrom(c), postID, pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetComments handles GET /api/comments. Administrators see every comment,
// other users their own.
func (s *Server) GetComments(c *fiber.Ctx) error {
	page, err := s.commentService.ListComments(c.UserContext(), actorFrom(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), actorFrom(c), service.CreateCommentInput{
		PostID:  postID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), actorFrom(c), service.UpdateCommentInput{
		CommentID: id,
		Version:   req.Version,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
