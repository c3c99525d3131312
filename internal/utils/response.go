package utils

import (
	"errors"

	apperrors "freelink/internal/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

var statusByCode = map[string]int{
	apperrors.ErrNotFound.Code:              fiber.StatusNotFound,
	apperrors.ErrWalletNotFound.Code:        fiber.StatusNotFound,
	apperrors.ErrTransactionNotFound.Code:   fiber.StatusNotFound,
	apperrors.ErrEscrowNotFound.Code:        fiber.StatusNotFound,
	apperrors.ErrDisputeNotFound.Code:       fiber.StatusNotFound,
	apperrors.ErrUserNotFound.Code:          fiber.StatusNotFound,
	apperrors.ErrForbidden.Code:             fiber.StatusForbidden,
	apperrors.ErrNotVerifiedClient.Code:     fiber.StatusForbidden,
	apperrors.ErrInvalidCredentials.Code:    fiber.StatusUnauthorized,
	apperrors.ErrInvalidToken.Code:          fiber.StatusUnauthorized,
	apperrors.ErrInsufficientBalance.Code:   fiber.StatusConflict,
	apperrors.ErrInsufficientHeld.Code:      fiber.StatusConflict,
	apperrors.ErrInvalidEscrowState.Code:    fiber.StatusConflict,
	apperrors.ErrInvalidDisputeState.Code:   fiber.StatusConflict,
	apperrors.ErrEscrowExists.Code:          fiber.StatusConflict,
	apperrors.ErrWalletExists.Code:          fiber.StatusConflict,
	apperrors.ErrUserExists.Code:            fiber.StatusConflict,
	apperrors.ErrSettleThroughEscrow.Code:   fiber.StatusConflict,
	apperrors.ErrEscrowBusy.Code:            fiber.StatusConflict,
	apperrors.ErrPaymentDeclined.Code:       fiber.StatusPaymentRequired,
	apperrors.ErrPaymentUnavailable.Code:    fiber.StatusServiceUnavailable,
	apperrors.ErrPayoutFailed.Code:          fiber.StatusBadGateway,
	apperrors.ErrPayoutAccountRequired.Code: fiber.StatusConflict,
}

// StatusFor returns the HTTP status for a domain error code. Unlisted
// domain errors are client errors.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return fiber.StatusBadRequest
}

// Error writes err as a JSON error response. Domain errors keep their
// message and code; anything else is logged and hidden behind a 500.
func Error(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if de, ok := apperrors.As(err); ok {
		return Respond(c, StatusFor(de.Code), fiber.Map{
			"error": err.Error(),
			"code":  de.Code,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Respond(c, fe.Code, fiber.Map{"error": fe.Message})
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return InternalError(c, "internal server error")
}
