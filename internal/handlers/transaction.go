package handlers

import (
	"freelink/internal/models"
	"freelink/internal/services/transaction"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactionService transaction.Service
	logger             *zap.Logger
}

func NewTransactionHandler(transactionService transaction.Service, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		FreelancerID uint            `json:"freelancer_id" validate:"required"`
		Amount       decimal.Decimal `json:"amount" validate:"money"`
		Description  string          `json:"description" validate:"max=500"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	tx, err := h.transactionService.Create(c.UserContext(), claims.UserID, input.FreelancerID, input.Amount, input.Description)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Created(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) GetUserTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, 20)
	txs, err := h.transactionService.ListForUser(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"transactions": txs, "page": p.Page, "limit": p.Limit})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	tx, err := h.transactionService.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	var input struct {
		Status models.TransactionStatus `json:"status" validate:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	tx, err := h.transactionService.UpdateStatus(c.UserContext(), claims.UserID, id, input.Status)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}
