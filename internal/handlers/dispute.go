package handlers

import (
	"freelink/internal/models"
	"freelink/internal/services/escrow"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DisputeHandler struct {
	escrowService escrow.Service
	logger        *zap.Logger
}

func NewDisputeHandler(escrowService escrow.Service, logger *zap.Logger) *DisputeHandler {
	return &DisputeHandler{
		escrowService: escrowService,
		logger:        logger,
	}
}

func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	d, err := h.escrowService.GetDispute(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) CancelDispute(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	d, err := h.escrowService.CancelDispute(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

// ListDisputes lists disputes for staff, optionally filtered by ?status=.
func (h *DisputeHandler) ListDisputes(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	status := models.DisputeStatus(c.Query("status"))
	switch status {
	case "", models.DisputeOpen, models.DisputeResolved, models.DisputeCancelled:
	default:
		return utils.BadRequest(c, "status must be one of [OPEN RESOLVED CANCELLED]")
	}

	disputes, err := h.escrowService.ListDisputes(c.UserContext(), claims.UserID, status)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"disputes": disputes})
}

func (h *DisputeHandler) ResolveDispute(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	var input struct {
		Resolution models.Resolution `json:"resolution" validate:"required,oneof=RELEASE REFUND"`
		Notes      string            `json:"notes" validate:"max=2000"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	d, err := h.escrowService.ResolveDispute(c.UserContext(), claims.UserID, id, input.Resolution, input.Notes)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}
