package handlers

import (
	"freelink/internal/middleware"
	"freelink/internal/services/wallet"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletHandler struct {
	walletService wallet.Service
	logger        *zap.Logger
}

func NewWalletHandler(walletService wallet.Service, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"money"`
	Reason string          `json:"reason" validate:"max=255"`
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}

	return utils.Success(c, fiber.Map{
		"wallet":    w,
		"available": w.Balance,
		"total":     w.Total(),
	})
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input amountRequest
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	w, err := h.walletService.Deposit(c.UserContext(), claims.UserID, input.Amount, input.Reason, c.Get(middleware.IdempotencyHeader))
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input amountRequest
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	w, err := h.walletService.Withdraw(c.UserContext(), claims.UserID, input.Amount, input.Reason)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

// Fund charges a card and deposits the amount.
func (h *WalletHandler) Fund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount        decimal.Decimal `json:"amount" validate:"money"`
		PaymentMethod string          `json:"payment_method" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	w, err := h.walletService.FundDeposit(c.UserContext(), claims.UserID, input.Amount, input.PaymentMethod, c.Get(middleware.IdempotencyHeader))
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

// SetPayoutAccount registers the connected account withdrawals go to.
func (h *WalletHandler) SetPayoutAccount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AccountID string `json:"account_id" validate:"required,max=64"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	w, err := h.walletService.SetPayoutAccount(c.UserContext(), claims.UserID, input.AccountID)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

// Payout withdraws to the registered payout account.
func (h *WalletHandler) Payout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount decimal.Decimal `json:"amount" validate:"money"`
	}
	if err := bind(c, &input); err != nil {
		return utils.Error(c, h.logger, err)
	}

	w, err := h.walletService.Payout(c.UserContext(), claims.UserID, input.Amount, c.Get(middleware.IdempotencyHeader))
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) History(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, 20)
	entries, total, err := h.walletService.History(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, h.logger, err)
	}
	p.SetTotal(total)

	return utils.Success(c, utils.PaginatedResponse{Data: entries, Pagination: p})
}
