// Package middleware provides HTTP middleware for the Fiber app:
// JWT validation and the admin role gate.
package middleware

import (
	"strings"

	"moonex/internal/models"
	"moonex/internal/services/auth"
	"moonex/internal/services/authz"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and adds claims to the request
// context.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Handler checks for a Bearer token, validates signature and expiry, and
// rejects tokens whose version no longer matches the user's current one.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return utils.Unauthorized(c, "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(c.Context(), claims.UserID)
	if err != nil {
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// RequireAdmin gates a route on the admin role. The role is checked live
// against the store, so a grant or revocation takes effect without
// re-issuing tokens.
func RequireAdmin(authzService authz.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}

		isAdmin, err := authzService.HasRole(c.Context(), claims.UserID, models.RoleAdmin)
		if err != nil {
			return utils.InternalError(c, "authorization check failed")
		}
		if !isAdmin {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}
