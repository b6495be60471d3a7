package handlers

import (
	"errors"

	"confia/internal/services/score"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// CommunityHandler manages the trust graph: connections and endorsements.
type CommunityHandler struct {
	scoreService score.Service
}

func NewCommunityHandler(scoreService score.Service) *CommunityHandler {
	return &CommunityHandler{
		scoreService: scoreService,
	}
}

func (h *CommunityHandler) Connect(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ToUserID   uint `json:"to_user_id"`
		TrustLevel int  `json:"trust_level"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	conn, err := h.scoreService.Connect(c.Context(), claims.UserID, input.ToUserID, input.TrustLevel)
	if err != nil {
		return communityError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"connection": conn,
	})
}

func (h *CommunityHandler) Endorse(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ToUserID uint `json:"to_user_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	if err := h.scoreService.Endorse(c.Context(), claims.UserID, input.ToUserID); err != nil {
		return communityError(c, err)
	}

	return utils.Success(c, fiber.Map{"message": "endorsement recorded"})
}

func communityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, score.ErrSelfConnection),
		errors.Is(err, score.ErrInvalidTrustLevel):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, score.ErrDuplicateConnection):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, score.ErrConnectionNotFound):
		return utils.NotFound(c, err.Error())
	default:
		return utils.InternalError(c, "community operation failed")
	}
}
