// Package middleware provides HTTP middleware components for the application.
// It includes authentication, authorization and idempotent request replay
// for the fiber web framework.
package middleware

import (
	"context"
	"strings"

	"freelink/internal/models"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	claimsKey = "claims"
	userIDKey = "userID"
)

// TokenVersions reports the current token version of a user. A token
// minted before the last logout or password change carries an older one.
type TokenVersions interface {
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
}

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the user claims to the request context.
type AuthMiddleware struct {
	tokens   *utils.TokenManager
	versions TokenVersions
	logger   *zap.Logger
}

func NewAuthMiddleware(tokens *utils.TokenManager, versions TokenVersions, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		versions: versions,
		logger:   logger.Named("auth"),
	}
}

// Handler validates the bearer token and checks that its version matches
// the user's current one.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := m.tokens.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.logger.Debug("token validation failed", zap.Error(err))
		return utils.Unauthorized(c, "invalid token")
	}

	currentVersion, err := m.versions.GetUserTokenVersion(c.UserContext(), claims.UserID)
	if err != nil {
		m.logger.Info("token user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return utils.Unauthorized(c, "invalid token")
	}

	if claims.TokenVersion != currentVersion {
		m.logger.Info("token version mismatch",
			zap.Uint("user_id", claims.UserID),
			zap.Int("token_version", claims.TokenVersion),
			zap.Int("current_version", currentVersion),
		)
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals(claimsKey, claims)
	c.Locals(userIDKey, claims.UserID)

	return c.Next()
}

// Claims returns the claims stored by Handler, if any.
func Claims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*models.UserClaims)
	return claims, ok && claims != nil
}

// StaffOnly rejects requests whose token was not issued to a staff user.
func StaffOnly(c *fiber.Ctx) error {
	claims, ok := Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if claims.Role != models.RoleStaff {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok {
			return utils.Unauthorized(c, "unauthorized")
		}
		if claims.HasPermission(permission) {
			return c.Next()
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}
