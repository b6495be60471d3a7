package handlers

import (
	"errors"

	"confia/internal/services/ledger"
	"confia/internal/services/transfer"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the risk-gated transfer endpoints.
type TransferHandler struct {
	transferService transfer.Service
}

func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Initiate starts a transfer. Committed transfers return 200, transfers
// parked for step-up verification return 202, blocked transfers return 403
// with the risk assessment attached.
func (h *TransferHandler) Initiate(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ToUserID          uint            `json:"to_user_id"`
		Amount            decimal.Decimal `json:"amount"`
		Description       string          `json:"description"`
		Latitude          *float64        `json:"latitude"`
		Longitude         *float64        `json:"longitude"`
		DeviceFingerprint string          `json:"device_fingerprint"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	result, err := h.transferService.Initiate(c.Context(), transfer.Request{
		FromUserID:        claims.UserID,
		ToUserID:          input.ToUserID,
		Amount:            input.Amount,
		Description:       input.Description,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		DeviceFingerprint: input.DeviceFingerprint,
	})
	if err != nil {
		return transferError(c, result, err)
	}

	if result.State == transfer.StateStepUpRequired {
		return utils.Accepted(c, result)
	}
	return utils.Success(c, result)
}

// Confirm completes a transfer parked for step-up verification.
func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	result, err := h.transferService.Confirm(c.Context(), claims.UserID, c.Params("id"))
	if err != nil {
		return transferError(c, result, err)
	}
	return utils.Success(c, result)
}

// Abandon discards a parked transfer.
func (h *TransferHandler) Abandon(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.transferService.Abandon(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return transferError(c, nil, err)
	}
	return utils.Success(c, fiber.Map{"state": transfer.StateAbandoned})
}

func transferError(c *fiber.Ctx, result *transfer.Result, err error) error {
	switch {
	case errors.Is(err, transfer.ErrFraudBlocked):
		body := fiber.Map{"error": err.Error()}
		if result != nil {
			body["state"] = result.State
			body["risk_assessment"] = result.Assessment
		}
		return utils.Respond(c, fiber.StatusForbidden, body)
	case errors.Is(err, transfer.ErrRecipientNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, transfer.ErrPendingNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, transfer.ErrNotPendingOwner):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSelfTransfer):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ledger.ErrWalletInactive):
		return utils.Forbidden(c, err.Error())
	default:
		return utils.InternalError(c, "transfer failed")
	}
}
