package handlers

import (
	"freelink/internal/services/auth"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAdminHandler(authService auth.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		logger:      logger,
	}
}

// VerifyUser lets staff mark a user verified so they can create transactions.
func (h *AdminHandler) VerifyUser(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	user, err := h.authService.VerifyUser(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"user": user})
}
