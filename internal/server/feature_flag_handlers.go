package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns the evaluated feature flags for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var userID uint
	if actor := actorFrom(c); actor != nil {
		userID = actor.ID
	}
	return c.JSON(fiber.Map{
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
