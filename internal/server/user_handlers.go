package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users (administrators only).
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, err := s.userService.ListUsers(c.UserContext(), actorFrom(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetUserProfile handles GET /api/users/:id: the public profile plus the
// owner's posts. The owner and administrators also see unpublished posts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor := actorFrom(c)
	owner, err := s.userService.GetProfile(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	in, err := s.listInput(c)
	if err != nil {
		return respondError(c, err)
	}
	posts, err := s.postService.ListProfilePosts(c.UserContext(), actor, owner, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":    owner,
		"posts":   posts,
		"filters": in.Filters,
		"mode":    service.ProfileMode(actor, owner),
	})
}

// ChangePassword handles PUT /api/users/:id/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := s.userService.ChangePassword(c.UserContext(), actorFrom(c), service.ChangePasswordInput{
		UserID:   id,
		Password: req.Password,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}

// UpdateUserData handles PUT /api/users/:id/data. Omitted fields are kept.
func (s *Server) UpdateUserData(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	data, err := s.userService.UpdateUserData(c.UserContext(), actorFrom(c), service.UpdateUserDataInput{
		UserID:      id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// ToggleAdmin handles POST /api/users/:id/admin
func (s *Server) ToggleAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.ToggleAdmin(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ToggleBlock handles POST /api/users/:id/block
func (s *Server) ToggleBlock(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.ToggleBlock(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
