package handlers

import (
	"time"

	"freelink/internal/models"
	"freelink/internal/services/auth"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  auth.Service
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(authService auth.Service, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"required,oneof=client freelancer"`
}

// RegisterUser creates a client or freelancer account with an empty wallet.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var input registerRequest
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	user, err := h.authService.Register(c.UserContext(), auth.RegisterInput{
		Username:     input.Username,
		Email:        input.Email,
		Phone:        input.Phone,
		Password:     input.Password,
		IsClient:     input.Role == models.RoleClient,
		IsFreelancer: input.Role == models.RoleFreelancer,
	})
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	return utils.Created(c, fiber.Map{"user": user})
}

// LoginUser handles user authentication and returns JWT tokens
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var input struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.UserContext(), input.Login, input.Password)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	role := user.Role()
	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"role":        role,
			"is_verified": user.IsVerified,
			"permissions": models.GetDefaultPermissions(role),
		},
	})
}

// RefreshToken handles token refresh requests
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	// First try to get token from cookies
	refreshToken := c.Cookies("refresh_token")

	// If not in cookies, try request body
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.Unauthorized(c, "refresh token not provided")
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return utils.Unauthorized(c, "refresh token not provided")
	}

	newAccessToken, newRefreshToken, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	h.setAuthCookies(c, newAccessToken, newRefreshToken)

	return utils.Success(c, fiber.Map{
		"access_token":  newAccessToken,
		"refresh_token": newRefreshToken,
	})
}

// LogoutUser revokes every token issued to the user so far.
func (h *AuthHandler) LogoutUser(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return utils.Error(c, h.logger, err)
	}

	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,password"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		return utils.Error(c, h.logger, err)
	}

	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{"message": "password changed, please log in again"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	user, err := h.authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"user": user})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Strict",
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Strict",
		Path:     "/api/auth/refresh",
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for name, path := range map[string]string{"access_token": "/", "refresh_token": "/api/auth/refresh"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   h.secureCookie,
			Path:     path,
		})
	}
}
