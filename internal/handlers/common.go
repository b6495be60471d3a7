package handlers

import (
	"confia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims pulls the authenticated caller's claims from the
// request context.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// sanitizeUser strips credentials before a user goes over the wire.
func sanitizeUser(user *models.User) fiber.Map {
	return fiber.Map{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
		"status": user.Status,
	}
}
