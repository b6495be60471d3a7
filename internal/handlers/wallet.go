package handlers

import (
	"context"
	"errors"
	"strconv"

	"confia/internal/models"
	"confia/internal/services/ledger"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to get wallet")
	}

	return utils.Success(c, fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := ledger.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return utils.BadRequest(c, "limit must be a positive integer")
		}
		limit = parsed
	}

	transactions, err := h.ledgerService.ListTransactions(c.Context(), claims.UserID, limit)
	if err != nil {
		return utils.InternalError(c, "failed to list transactions")
	}

	return utils.Success(c, fiber.Map{
		"transactions": transactions,
	})
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	return h.mutate(c, h.ledgerService.Deposit)
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	return h.mutate(c, h.ledgerService.Withdraw)
}

type balanceOp func(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transaction, error)

func (h *WalletHandler) mutate(c *fiber.Ctx, op balanceOp) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	txn, err := op(c.Context(), claims.UserID, input.Amount, input.Description)
	if err != nil {
		return walletError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transaction": txn,
	})
}

func walletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ledger.ErrWalletInactive):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, ledger.ErrWalletNotFound):
		return utils.NotFound(c, err.Error())
	default:
		return utils.InternalError(c, "wallet operation failed")
	}
}
