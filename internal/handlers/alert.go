package handlers

import (
	"errors"

	"confia/internal/services/risk"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AlertHandler exposes fraud alerts raised by the risk engine.
type AlertHandler struct {
	riskService risk.Service
}

func NewAlertHandler(riskService risk.Service) *AlertHandler {
	return &AlertHandler{
		riskService: riskService,
	}
}

func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	includeResolved := c.QueryBool("include_resolved", false)

	alerts, err := h.riskService.ListAlerts(c.Context(), claims.UserID, includeResolved)
	if err != nil {
		return utils.InternalError(c, "failed to list alerts")
	}

	return utils.Success(c, fiber.Map{
		"alerts": alerts,
	})
}

func (h *AlertHandler) ResolveAlert(c *fiber.Ctx) error {
	alert, err := h.riskService.ResolveAlert(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrAlertNotFound):
			return utils.NotFound(c, err.Error())
		case errors.Is(err, risk.ErrAlertResolved):
			return utils.Conflict(c, err.Error())
		default:
			return utils.InternalError(c, "failed to resolve alert")
		}
	}

	return utils.Success(c, fiber.Map{
		"alert": alert,
	})
}
