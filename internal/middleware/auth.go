// Package middleware provides HTTP middleware for the fiber application.
package middleware

import (
	"strings"

	"confia/internal/models"
	"confia/internal/services/auth"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware validates the bearer token and loads the caller's identity
// into the request context.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Handler checks the Authorization header, validates the token signature
// and expiry, and rejects tokens from before the user's last logout.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, claims, err := utils.ParseToken(tokenString)
	if err != nil || !token.Valid {
		return utils.Unauthorized(c, "invalid token")
	}

	user, err := m.authService.GetUserByID(claims.UserID)
	if err != nil {
		logrus.WithField("user_id", claims.UserID).Debug("token references unknown user")
		return utils.Unauthorized(c, "invalid token")
	}

	if claims.TokenVersion != user.TokenVersion {
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// AdminOnly allows only callers whose token carries the admin role. It must
// run after Handler.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if claims.Role != "admin" {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
