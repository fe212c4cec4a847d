package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Published  *bool  `json:"published"`
	CategoryID uint   `json:"category_id"`
	// Tags is a comma-separated list of tag names.
	Tags    string `json:"tags"`
	Version *uint  `json:"version"`
}

// listInput reads the filter and page query parameters shared by the
// front page and profile listings. Filters that do not resolve are dropped.
func (s *Server) listInput(c *fiber.Ctx) (service.ListPostsInput, error) {
	filters, err := s.filters.BuildFilters(c.UserContext(), service.RawFilters{
		CategoryID: c.Query("filters_category_id"),
		TagID:      c.Query("filters_tag_id"),
		Search:     c.Query("search"),
	})
	if err != nil {
		return service.ListPostsInput{}, err
	}
	return service.ListPostsInput{Filters: filters, Page: pageParam(c)}, nil
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	in, err := s.listInput(c)
	if err != nil {
		return respondError(c, err)
	}
	actor := actorFrom(c)
	page, err := s.postService.ListPosts(c.UserContext(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts":   page,
		"filters": in.Filters,
		"mode":    service.MainMode(actor),
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.CreatePost(c.UserContext(), actorFrom(c), service.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Published:  req.Published,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.UpdatePost(c.UserContext(), actorFrom(c), service.UpdatePostInput{
		PostID:     id,
		Version:    req.Version,
		Title:      req.Title,
		Content:    req.Content,
		Published:  req.Published,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
