package handlers

import (
	"freelink/internal/services/escrow"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	escrowService escrow.Service
	logger        *zap.Logger
}

func NewEscrowHandler(escrowService escrow.Service, logger *zap.Logger) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
		logger:        logger,
	}
}

func (h *EscrowHandler) CreateEscrow(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TransactionID uint `json:"transaction_id" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	e, err := h.escrowService.Create(c.UserContext(), claims.UserID, input.TransactionID)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Created(c, fiber.Map{"escrow": e})
}

func (h *EscrowHandler) GetUserEscrows(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, 20)
	escrows, err := h.escrowService.ListForUser(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"escrows": escrows, "page": p.Page, "limit": p.Limit})
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	e, err := h.escrowService.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	disputes, err := h.escrowService.EscrowDisputes(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"escrow": e, "disputes": disputes})
}

func (h *EscrowHandler) Release(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	e, err := h.escrowService.Release(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"escrow": e})
}

func (h *EscrowHandler) Refund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	e, err := h.escrowService.Refund(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"escrow": e})
}

// OpenDispute puts a HELD escrow into dispute.
func (h *EscrowHandler) OpenDispute(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	var input struct {
		Reason string `json:"reason" validate:"max=2000"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	d, err := h.escrowService.Dispute(c.UserContext(), claims.UserID, id, input.Reason)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Created(c, fiber.Map{"dispute": d})
}
